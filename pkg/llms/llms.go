// Package llms provides the model abstractions used by the database tools:
// chat-style content generation, text embeddings, and result reranking.
package llms

import (
	"context"
)

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderAnthropic is the type of provider.
	ProviderAnthropic ProviderType = "ANTHROPIC"
	// ProviderAzure is the type of provider.
	ProviderAzure ProviderType = "AZURE"
	// ProviderOpenAI is the type of provider.
	ProviderOpenAI ProviderType = "OPENAI"
	// ProviderPerplexity is the type of provider.
	ProviderPerplexity ProviderType = "PERPLEXITY"
)

// Model is an interface chat models implement.
type Model interface {
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// GenerateContent asks the model to generate content from a sequence of
	// messages.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// Embedder converts texts into dense vectors for vector search.
type Embedder interface {
	// CreateEmbedding returns one vector per input text, in input order.
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// RankedDocument is a single reranker result.
type RankedDocument struct {
	// Index is the position of the document in the original input.
	Index int `json:"index"`
	// Score is the relevance score assigned by the reranker, higher is better.
	Score float64 `json:"relevance_score"`
}

// Reranker reorders candidate documents by relevance to a query.
type Reranker interface {
	// Rerank returns up to topN documents ordered by descending relevance.
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RankedDocument, error)
}
