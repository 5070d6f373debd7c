package llmfactory_test

import (
	"context"
	"testing"

	"github.com/obstack/obtools/pkg/llmfactory"
	"github.com/obstack/obtools/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	provider string
	model    string
}

func (f *fakeLLM) GetProviderType() llms.ProviderType {
	return llms.ProviderType(f.provider)
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return nil, nil
}

func withFakeLLM(t *testing.T) {
	t.Helper()
	llmfactory.NewLLM = func(cfg *llmfactory.ProviderConfig, preferredModels ...string) (llms.Model, error) {
		return &fakeLLM{provider: cfg.Name, model: cfg.FindModel(preferredModels...)}, nil
	}
	t.Cleanup(func() {
		llmfactory.NewLLM = llmfactory.CreateLLM
	})
}

func Test_Factory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("AZURE_OPENAI_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")
	t.Setenv("RERANK_API_KEY", "fakekey")

	cfg, err := llmfactory.LoadConfig("testdata/llm.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Providers)

	withFakeLLM(t)

	f := llmfactory.New(cfg)
	model, err := f.DefaultModel()
	require.NoError(t, err)
	fm := model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	model, err = f.ModelByName("gpt-4o-mini")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o-mini", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	// fallback across providers
	model, err = f.ModelByName("unknown-model", "gpt-41-mini")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-41-mini", fm.model)
	assert.Equal(t, "AZURE", fm.provider)

	// fallback to default
	model, err = f.ModelByName("non-existent-model")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)

	model, err = f.ModelByType("ANTHROPIC")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "claude-sonnet-4-20250514", fm.model)

	_, err = f.ModelByType("UNSUPPORTED")
	assert.EqualError(t, err, "provider not found for type: UNSUPPORTED")

	// tool mapping
	model, err = f.ToolModel("text2sql")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)

	// default tool mapping
	model, err = f.ToolModel("unknown_tool")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o-mini", fm.model)
}

func Test_Load(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("AZURE_OPENAI_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")
	t.Setenv("RERANK_API_KEY", "fakekey")

	f, err := llmfactory.Load("testdata/llm.yaml")
	require.NoError(t, err)
	require.NotNil(t, f)

	_, err = llmfactory.Load("testdata/non-existent.yaml")
	require.Error(t, err)
}

func Test_EmbedderReranker(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("AZURE_OPENAI_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")
	t.Setenv("RERANK_API_KEY", "fakekey")

	cfg, err := llmfactory.LoadConfig("testdata/llm.yaml")
	require.NoError(t, err)

	f := llmfactory.New(cfg)

	embedder, err := f.Embedder()
	require.NoError(t, err)
	require.NotNil(t, embedder)

	// cached on repeat use
	embedder2, err := f.Embedder()
	require.NoError(t, err)
	assert.Equal(t, embedder, embedder2)

	reranker, err := f.Reranker()
	require.NoError(t, err)
	require.NotNil(t, reranker)

	// not configured
	f2 := llmfactory.New(&llmfactory.Config{})
	_, err = f2.Embedder()
	require.Error(t, err)

	reranker, err = f2.Reranker()
	require.NoError(t, err)
	assert.Nil(t, reranker)
}

func Test_EmptyConfig(t *testing.T) {
	f := llmfactory.New(&llmfactory.Config{})

	_, err := f.DefaultModel()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no providers configured")

	_, err = f.ModelByType("OPENAI")
	require.Error(t, err)

	_, err = f.ModelByName("gpt-4o")
	require.Error(t, err)
}

func Test_ProviderConfigFindModel(t *testing.T) {
	cfg := &llmfactory.ProviderConfig{
		AvailableModels: []string{"gpt-4o", "gpt-4o-mini"},
		DefaultModel:    "gpt-4o",
	}

	assert.Equal(t, "gpt-4o-mini", cfg.FindModel("gpt-4o-mini"))
	assert.Equal(t, "gpt-4o", cfg.FindModel("non-existent"))
	assert.Equal(t, "gpt-4o", cfg.FindModel())
}

func Test_ModelCaching(t *testing.T) {
	withFakeLLM(t)

	cfg := &llmfactory.Config{
		Providers: []*llmfactory.ProviderConfig{
			{
				Name:            "OPENAI",
				OpenAI:          llmfactory.OpenAIConfig{APIType: "OPENAI"},
				AvailableModels: []string{"gpt-4o", "gpt-4o-mini"},
				DefaultModel:    "gpt-4o",
			},
		},
	}

	f := llmfactory.New(cfg)

	model1, err := f.ModelByType("OPENAI")
	require.NoError(t, err)
	model2, err := f.ModelByType("OPENAI")
	require.NoError(t, err)
	assert.Equal(t, model1, model2)

	model3, err := f.ModelByName("gpt-4o-mini")
	require.NoError(t, err)
	model4, err := f.ModelByName("gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, model3, model4)
}
