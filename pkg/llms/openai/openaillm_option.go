package openai

import (
	"os"

	"github.com/obstack/obtools/pkg/llms"
	"github.com/obstack/obtools/pkg/llms/openai/internal/openaiclient"
)

const (
	tokenEnvVarName   = "OPENAI_API_KEY"
	baseURLEnvVarName = "OPENAI_BASE_URL"
)

type options struct {
	token          string
	model          string
	embeddingModel string
	baseURL        string
	organization   string
	apiVersion     string
	provider       llms.ProviderType
	httpClient     openaiclient.Doer
}

// Option is a functional option for the OpenAI client.
type Option func(*options)

// WithToken passes the API token. Defaults to OPENAI_API_KEY.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithModel passes the model to use for chat completions.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithEmbeddingModel passes the model to use for embeddings.
func WithEmbeddingModel(model string) Option {
	return func(o *options) {
		o.embeddingModel = model
	}
}

// WithBaseURL passes the API endpoint. Defaults to OPENAI_BASE_URL, then the
// public OpenAI endpoint. Any OpenAI-compatible endpoint can be used here.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithOrganization passes the OpenAI organization.
func WithOrganization(organization string) Option {
	return func(o *options) {
		o.organization = organization
	}
}

// WithAPIVersion passes the Azure API version, e.g. "2025-04-01-preview".
// Required when the provider is AZURE.
func WithAPIVersion(apiVersion string) Option {
	return func(o *options) {
		o.apiVersion = apiVersion
	}
}

// WithProvider sets the provider type: OPENAI, AZURE or PERPLEXITY.
func WithProvider(provider llms.ProviderType) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithHTTPClient passes a custom HTTP client.
func WithHTTPClient(client openaiclient.Doer) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

func newClient(opts ...Option) (*openaiclient.Client, error) {
	o := &options{
		token:    os.Getenv(tokenEnvVarName),
		baseURL:  os.Getenv(baseURLEnvVarName),
		provider: llms.ProviderOpenAI,
	}
	for _, opt := range opts {
		opt(o)
	}
	return openaiclient.New(
		openaiclient.ProviderType(o.provider),
		o.model, o.token, o.baseURL, o.organization, o.apiVersion, o.embeddingModel,
		o.httpClient,
	)
}
