package bot

// Kakao i open builder skill payloads (version 2.0)

// SkillRequest is the inbound webhook body. Only the utterance is used.
type SkillRequest struct {
	UserRequest UserRequest `json:"userRequest"`
}

// UserRequest carries the user's message
type UserRequest struct {
	Utterance string `json:"utterance"`
}

// SkillResponse is the reply envelope
type SkillResponse struct {
	Version  string   `json:"version"`
	Template Template `json:"template"`
}

// Template holds the reply outputs
type Template struct {
	Outputs []Output `json:"outputs"`
}

// Output is a single reply bubble
type Output struct {
	SimpleText SimpleText `json:"simpleText"`
}

// SimpleText is a plain-text bubble
type SimpleText struct {
	Text string `json:"text"`
}

// NewTextResponse wraps text in a version 2.0 envelope with one simpleText output
func NewTextResponse(text string) SkillResponse {
	return SkillResponse{
		Version: "2.0",
		Template: Template{
			Outputs: []Output{{SimpleText: SimpleText{Text: text}}},
		},
	}
}
