package tools

import (
	"github.com/obstack/obtools/pkg/llms"
	"github.com/obstack/obtools/pkg/metricskey"
)

// RecordLLMUsage counts the token usage reported by a model response.
// Providers report usage under different keys, so both spellings are read.
func RecordLLMUsage(tool, model string, resp *llms.ContentResponse) {
	if resp == nil {
		return
	}
	for _, choice := range resp.Choices {
		if choice == nil {
			continue
		}
		in := intFrom(choice.GenerationInfo, "PromptTokens", "InputTokens")
		out := intFrom(choice.GenerationInfo, "CompletionTokens", "OutputTokens")
		total := intFrom(choice.GenerationInfo, "TotalTokens")
		if total == 0 {
			total = in + out
		}
		if in > 0 {
			metricskey.StatsLLMInputTokens.IncrCounter(float64(in), tool, model)
		}
		if out > 0 {
			metricskey.StatsLLMOutputTokens.IncrCounter(float64(out), tool, model)
		}
		if total > 0 {
			metricskey.StatsLLMTotalTokens.IncrCounter(float64(total), tool, model)
		}
	}
}

func intFrom(info map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
