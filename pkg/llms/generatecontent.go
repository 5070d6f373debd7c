package llms

import (
	"strings"
)

// Role is the type of chat message.
type Role string

const (
	// RoleAI is a message sent by an AI.
	RoleAI Role = "ai"
	// RoleHuman is a message sent by a human.
	RoleHuman Role = "human"
	// RoleSystem is a message sent by the system.
	RoleSystem Role = "system"
)

// Message is a message sent to a LLM. It has a role and a sequence of
// text parts.
type Message struct {
	Role  Role     `json:"role"`
	Parts []string `json:"parts"`
}

// MessageFromTextParts is a helper function to create a Message with a role
// and a list of text parts.
func MessageFromTextParts(role Role, parts ...string) Message {
	return Message{
		Role:  role,
		Parts: parts,
	}
}

// GetContent returns the concatenated text of the message parts.
func (m Message) GetContent() string {
	var buf strings.Builder
	for _, p := range m.Parts {
		buf.WriteString(p)
		if !strings.HasSuffix(p, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// ContentResponse is the response returned by a GenerateContent call.
// It can potentially return multiple content choices.
type ContentResponse struct {
	Choices []*ContentChoice
}

// Content returns the text of the first choice, or an empty string when the
// model returned no choices.
func (r *ContentResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Content
}

// ContentChoice is one of the response choices returned by GenerateContent
// calls.
type ContentChoice struct {
	// Content is the textual content of a response
	Content string `json:"content"`

	// StopReason is the reason the model stopped generating output.
	StopReason string `json:"stop_reason"`

	// GenerationInfo is arbitrary information the model adds to the response,
	// such as token usage.
	GenerationInfo map[string]any `json:"generation_info"`
}
