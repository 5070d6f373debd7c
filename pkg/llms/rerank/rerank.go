// Package rerank provides a client for rerank APIs that follow the
// Cohere-compatible wire format, such as Cohere, Jina and vLLM deployments.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/llms"
	"github.com/obstack/obtools/pkg/metricskey"
)

// ErrEmptyResponse is returned when the rerank API returns no results.
var ErrEmptyResponse = errors.New("rerank: empty response")

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for a Cohere-compatible rerank endpoint.
type Client struct {
	model      string
	token      string
	baseURL    string
	httpClient Doer
}

var _ llms.Reranker = (*Client)(nil)

// New returns a new rerank client. baseURL is the provider endpoint without
// the /rerank suffix.
func New(model, token, baseURL string, httpClient Doer) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("rerank: missing base URL")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		model:      model,
		token:      token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

type rerankPayload struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResponsePayload struct {
	Results []llms.RankedDocument `json:"results"`
}

type errorMessage struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// Rerank implements the Reranker interface.
func (c *Client) Rerank(ctx context.Context, query string, documents []string, topN int) ([]llms.RankedDocument, error) {
	metricskey.StatsRerankRequests.IncrCounter(1, c.model)

	payloadBytes, err := json.Marshal(&rerankPayload{
		Model:     c.model,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("API returned unexpected status code: %d", resp.StatusCode)

		var errResp errorMessage
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, errors.New(msg)
		}
		if errResp.Error.Message != "" {
			return nil, errors.Errorf("%s: %s", msg, errResp.Error.Message)
		}
		return nil, errors.Errorf("%s: %s", msg, errResp.Message)
	}

	var response rerankResponsePayload
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	if len(response.Results) == 0 {
		return nil, ErrEmptyResponse
	}
	return response.Results, nil
}
