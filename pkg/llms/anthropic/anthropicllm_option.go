package anthropic

import (
	"net/http"
)

const (
	// TokenEnvVarName is the environment variable holding the API key.
	TokenEnvVarName = "ANTHROPIC_API_KEY"
)

// Options holds the configuration for the Anthropic client.
type Options struct {
	Token      string
	Model      string
	BaseURL    string
	HttpClient *http.Client
}

// Option is a functional option for the Anthropic client.
type Option func(*Options)

// WithToken passes the API token. Defaults to ANTHROPIC_API_KEY.
func WithToken(token string) Option {
	return func(o *Options) {
		o.Token = token
	}
}

// WithModel passes the model to use.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithBaseURL passes the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *Options) {
		o.BaseURL = baseURL
	}
}

// WithHTTPClient passes a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HttpClient = client
	}
}
