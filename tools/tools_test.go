package tools_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/llms"
	"github.com/obstack/obtools/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Message string `json:"message" validate:"required"`
}

type echoResult struct {
	Message string `json:"message"`
}

type echoTool struct{}

func (t *echoTool) Name() string        { return "Echo" }
func (t *echoTool) Description() string { return "Returns the input message." }
func (t *echoTool) Parameters() any     { return nil }

func (t *echoTool) Run(ctx context.Context, req *echoRequest) (*echoResult, error) {
	return &echoResult{Message: req.Message}, nil
}

func (t *echoTool) Call(ctx context.Context, input string) (string, error) {
	var req echoRequest
	if err := tools.UnmarshalInput(input, &req); err != nil {
		return "", err
	}
	return req.Message, nil
}

var _ tools.Tool[echoRequest, echoResult] = (*echoTool)(nil)

func TestUnmarshalInput(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		var req echoRequest
		err := tools.UnmarshalInput(`{"message": "hi"}`, &req)
		require.NoError(t, err)
		assert.Equal(t, "hi", req.Message)
	})

	t.Run("fenced json", func(t *testing.T) {
		var req echoRequest
		err := tools.UnmarshalInput("Sure, here you go:\n```json\n{\"message\": \"hi\"}\n```", &req)
		require.NoError(t, err)
		assert.Equal(t, "hi", req.Message)
	})

	t.Run("lenient json", func(t *testing.T) {
		var req echoRequest
		err := tools.UnmarshalInput(`{"message": "hi",}`, &req)
		require.NoError(t, err)
		assert.Equal(t, "hi", req.Message)
	})

	t.Run("not json", func(t *testing.T) {
		var req echoRequest
		err := tools.UnmarshalInput(`not a json at all`, &req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput))
	})
}

func TestValidateRequest(t *testing.T) {
	err := tools.ValidateRequest(&echoRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")

	assert.NoError(t, tools.ValidateRequest(&echoRequest{Message: "hi"}))
}

func TestGetDescriptions(t *testing.T) {
	out := tools.GetDescriptions(&echoTool{})
	assert.Contains(t, out, `"Name": "Echo"`)
	assert.Contains(t, out, `"Description": "Returns the input message."`)
}

func TestCallbacks(t *testing.T) {
	ctx := context.Background()
	tool := &echoTool{}

	var buf bytes.Buffer
	printer := tools.NewPrinter(&buf, tools.ModeVerbose)
	fanout := tools.NewFanout(tools.NewNoop(), tools.NewMetrics())
	fanout.Add(printer)

	fanout.OnToolStart(ctx, tool, `{"message": "hi"}`)
	fanout.OnToolEnd(ctx, tool, `{"message": "hi"}`, "hi")
	fanout.OnToolError(ctx, tool, `{"message": "hi"}`, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "Tool Start: Echo")
	assert.Contains(t, out, "Output: hi")
	assert.Contains(t, out, "Tool Error: Echo: boom")
}

func TestRecordLLMUsage(t *testing.T) {
	// Must not panic on nil or empty responses.
	tools.RecordLLMUsage("Echo", "gpt-4o", nil)
	tools.RecordLLMUsage("Echo", "gpt-4o", &llms.ContentResponse{})

	tools.RecordLLMUsage("Echo", "gpt-4o", &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			nil,
			{
				Content: "SELECT 1",
				GenerationInfo: map[string]any{
					"PromptTokens":     10,
					"CompletionTokens": int64(5),
					"TotalTokens":      float64(15),
				},
			},
			{
				Content: "SELECT 2",
				GenerationInfo: map[string]any{
					"InputTokens":  3,
					"OutputTokens": 4,
				},
			},
		},
	})
}
