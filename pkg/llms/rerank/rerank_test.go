package rerank_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/obstack/obtools/pkg/llms/rerank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerank(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bge-reranker-v2-m3", req["model"])
		assert.Equal(t, "find shoes", req["query"])
		assert.Len(t, req["documents"], 3)
		assert.EqualValues(t, 2, req["top_n"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{"index": 2, "relevance_score": 0.98},
				{"index": 0, "relevance_score": 0.42}
			]
		}`))
	}))
	defer srv.Close()

	c, err := rerank.New("bge-reranker-v2-m3", "test-token", srv.URL, nil)
	require.NoError(t, err)

	res, err := c.Rerank(context.Background(), "find shoes", []string{"a", "b", "c"}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, 2, res[0].Index)
	assert.InDelta(t, 0.98, res[0].Score, 1e-9)
	assert.Equal(t, 0, res[1].Index)
}

func TestRerankError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "model not found"}`))
	}))
	defer srv.Close()

	c, err := rerank.New("unknown", "", srv.URL, nil)
	require.NoError(t, err)

	_, err = c.Rerank(context.Background(), "q", []string{"a"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 400")
	assert.Contains(t, err.Error(), "model not found")
}

func TestRerankMissingBaseURL(t *testing.T) {
	_, err := rerank.New("m", "", "", nil)
	require.Error(t, err)
}
