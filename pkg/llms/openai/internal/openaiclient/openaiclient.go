package openaiclient

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
)

// ErrEmptyResponse is returned when the API returns an empty response.
var ErrEmptyResponse = errors.New("empty response")

type ProviderType string

const (
	ProviderOpenAI     ProviderType = "OPENAI"
	ProviderAzure      ProviderType = "AZURE"
	ProviderPerplexity ProviderType = "PERPLEXITY"
)

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the OpenAI chat completions and embeddings APIs,
// including Azure OpenAI deployments and OpenAI-compatible endpoints.
type Client struct {
	Model          string
	EmbeddingModel string
	Provider       ProviderType

	token        string
	baseURL      string
	organization string
	// required when Provider is ProviderAzure
	apiVersion string
	httpClient Doer
}

// New returns a new client.
func New(provider ProviderType, model, token, baseURL, organization, apiVersion, embeddingModel string, httpClient Doer) (*Client, error) {
	if token == "" {
		return nil, errors.New("missing API token")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		Model:          model,
		EmbeddingModel: embeddingModel,
		Provider:       provider,
		token:          token,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		organization:   organization,
		apiVersion:     apiVersion,
		httpClient:     httpClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c, nil
}

func IsAzure(provider ProviderType) bool {
	return provider == ProviderAzure
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if IsAzure(c.Provider) {
		req.Header.Set("api-key", c.token)
	}
	if c.organization != "" {
		req.Header.Set("OpenAI-Organization", c.organization)
	}
}

func (c *Client) buildURL(suffix string, model string) string {
	if IsAzure(c.Provider) {
		// azure example url:
		// /openai/deployments/{model}/chat/completions?api-version={api_version}
		return fmt.Sprintf("%s/openai/deployments/%s%s?api-version=%s",
			strings.TrimRight(c.baseURL, "/"), model, suffix, c.apiVersion,
		)
	}
	return fmt.Sprintf("%s%s", c.baseURL, suffix)
}

type errorMessage struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
