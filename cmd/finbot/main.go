package main

import (
	"os"

	"github.com/wonny/finbot/cmd/finbot/commands"
)

// main is the entry point for the finbot CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/finbot [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
