package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/wonny/finbot/internal/bot"
	"github.com/wonny/finbot/pkg/logger"
)

// maxRequestBody caps the skill request size
const maxRequestBody = 1 << 20

// Replier turns an utterance into reply text
type Replier interface {
	Handle(ctx context.Context, utterance string) string
}

// WebhookHandler serves the Kakao skill webhook
// ⭐ SSOT: 카카오 스킬 응답은 이 핸들러에서만
type WebhookHandler struct {
	replier Replier
	logger  *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(replier Replier, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		replier: replier,
		logger:  log,
	}
}

// Handle answers a skill request. The status is always 200; problems are
// reported in the reply text.
// POST /webhook
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req bot.SkillRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid skill request")
		respondJSON(w, http.StatusOK, bot.NewTextResponse(bot.TextUnsupported))
		return
	}

	utterance := req.UserRequest.Utterance
	reply := h.replier.Handle(r.Context(), utterance)

	h.logger.WithFields(map[string]interface{}{
		"utterance": utterance,
		"reply_len": len(reply),
	}).Info("Skill request answered")

	respondJSON(w, http.StatusOK, bot.NewTextResponse(reply))
}
