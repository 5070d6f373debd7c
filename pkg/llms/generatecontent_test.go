package llms_test

import (
	"testing"

	"github.com/obstack/obtools/pkg/llms"
	"github.com/stretchr/testify/assert"
)

func TestMessageGetContent(t *testing.T) {
	m := llms.MessageFromTextParts(llms.RoleHuman, "first", "second\n")
	assert.Equal(t, "first\nsecond\n", m.GetContent())

	empty := llms.MessageFromTextParts(llms.RoleSystem)
	assert.Equal(t, "", empty.GetContent())
}

func TestContentResponseContent(t *testing.T) {
	var nilResp *llms.ContentResponse
	assert.Equal(t, "", nilResp.Content())
	assert.Equal(t, "", (&llms.ContentResponse{}).Content())

	resp := &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: "SELECT 1"},
			{Content: "SELECT 2"},
		},
	}
	assert.Equal(t, "SELECT 1", resp.Content())
}

func TestCallOptions(t *testing.T) {
	opts := llms.CallOptions{}
	for _, opt := range []llms.CallOption{
		llms.WithModel("gpt-4o-mini"),
		llms.WithMaxTokens(512),
		llms.WithTemperature(0.1),
		llms.WithTopP(0.9),
		llms.WithStopWords([]string{";"}),
		llms.WithSeed(42),
		llms.WithJSONMode(),
	} {
		opt(&opts)
	}
	assert.Equal(t, "gpt-4o-mini", opts.Model)
	assert.Equal(t, 512, opts.MaxTokens)
	assert.Equal(t, 0.1, opts.Temperature)
	assert.Equal(t, 0.9, opts.TopP)
	assert.Equal(t, []string{";"}, opts.StopWords)
	assert.Equal(t, 42, opts.Seed)
	assert.True(t, opts.JSONMode)
}
