// Package hybrid performs combined vector and full-text search over
// OceanBase tables through the DBMS_HYBRID_SEARCH API.
package hybrid

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/obstack/obtools/pkg/llms"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var logger = xlog.NewPackageLogger("github.com/obstack/obtools", "hybrid")

// DefaultTopK is the number of results returned when the caller does not set
// a limit.
const DefaultTopK = 10

// Params describe a hybrid search request.
type Params struct {
	// Tables lists the tables to search. At least one is required.
	Tables []string
	// Query is the natural-language search query.
	Query string
	// TopK limits the number of results. Defaults to DefaultTopK.
	TopK int
	// Filter is an optional Elasticsearch-style filter clause, applied as
	// query.bool.filter in the search body.
	Filter json.RawMessage
}

// Hit is a single search result. The raw hit fields are preserved; the
// search adds `_table`, and `_rerank_score` after reranking.
type Hit = map[string]any

// SchemaInspector resolves the searchable columns of a table.
type SchemaInspector interface {
	GetSearchColumns(ctx context.Context, table string) (*obdb.SearchColumns, error)
}

// Searcher runs hybrid searches against one database.
type Searcher struct {
	client   *obdb.Client
	insp     SchemaInspector
	embedder llms.Embedder
	reranker llms.Reranker
}

// NewSearcher creates a searcher. The reranker is optional, but required to
// search multiple tables in one request.
func NewSearcher(client *obdb.Client, embedder llms.Embedder, reranker llms.Reranker) *Searcher {
	return &Searcher{
		client:   client,
		insp:     obdb.NewInspector(client),
		embedder: embedder,
		reranker: reranker,
	}
}

// WithInspector replaces the default inspector, typically with a cached one.
func (s *Searcher) WithInspector(insp SchemaInspector) *Searcher {
	s.insp = insp
	return s
}

// Search embeds the query, runs a hybrid search on every requested table,
// merges the hits and optionally reranks them.
func (s *Searcher) Search(ctx context.Context, p *Params) ([]Hit, error) {
	if len(p.Tables) == 0 {
		return nil, errors.New("at least one table is required")
	}
	if strings.TrimSpace(p.Query) == "" {
		return nil, errors.New("query is required")
	}
	if s.embedder == nil {
		return nil, errors.New("embedding is not configured")
	}
	if len(p.Tables) > 1 && s.reranker == nil {
		return nil, errors.New("rerank is required when multiple tables are specified")
	}
	topK := p.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := s.embedder.CreateEmbedding(ctx, []string{p.Query})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to embed query")
	}
	if len(vectors) == 0 {
		return nil, errors.New("failed to generate embeddings for the query")
	}
	vector := vectors[0]

	var hits []Hit
	for _, table := range p.Tables {
		table = strings.TrimSpace(table)
		if table == "" {
			continue
		}

		cols, err := s.insp.GetSearchColumns(ctx, table)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to inspect table %q", table)
		}
		if !cols.HasSearchIndex() {
			return nil, errors.Errorf("table %q does not have a vector index or full-text index", table)
		}

		body, err := BuildSearchBody(cols, p.Query, vector, topK, p.Filter)
		if err != nil {
			return nil, err
		}

		raw, err := s.client.QueryValue(ctx,
			"SELECT DBMS_HYBRID_SEARCH.SEARCH(?, ?)", table, body)
		if err != nil {
			return nil, errors.WithMessagef(err, "hybrid search failed on table %q", table)
		}

		hits = append(hits, parseHits(raw, table)...)
	}

	sortByScore(hits, "_score")
	if len(hits) > topK {
		hits = hits[:topK]
	}

	if s.reranker != nil && len(hits) > 0 {
		hits = s.rerank(ctx, p.Query, hits, topK)
	}
	return hits, nil
}

// BuildSearchBody builds the DBMS_HYBRID_SEARCH request body for a table.
// The first vector column serves the knn clause and the first full-text
// column serves the match clause.
func BuildSearchBody(cols *obdb.SearchColumns, query string, vector []float32, topK int, filter json.RawMessage) (string, error) {
	body, err := sjson.Set("{}", "size", topK)
	if err != nil {
		return "", errors.WithStack(err)
	}

	if len(cols.Vector) > 0 {
		body, err = sjson.Set(body, "knn.field", cols.Vector[0])
		if err != nil {
			return "", errors.WithStack(err)
		}
		body, err = sjson.Set(body, "knn.k", topK)
		if err != nil {
			return "", errors.WithStack(err)
		}
		body, err = sjson.Set(body, "knn.query_vector", vector)
		if err != nil {
			return "", errors.WithStack(err)
		}
	}

	if len(cols.Fulltext) > 0 {
		match, err := json.Marshal(map[string]any{
			cols.Fulltext[0]: map[string]any{"query": query},
		})
		if err != nil {
			return "", errors.WithStack(err)
		}
		body, err = sjson.SetRaw(body, "query.bool.should.0.match", string(match))
		if err != nil {
			return "", errors.WithStack(err)
		}
	}

	if len(filter) > 0 {
		body, err = sjson.SetRaw(body, "query.bool.filter", string(filter))
		if err != nil {
			return "", errors.WithStack(err)
		}
	}
	return body, nil
}

// parseHits extracts hits from an Elasticsearch-style response and tags each
// with the table it came from. A response without hits.hits is returned
// whole as a single result.
func parseHits(raw string, table string) []Hit {
	parsed := gjson.Parse(raw)

	list := parsed.Get("hits.hits")
	if !list.Exists() {
		if parsed.IsArray() {
			list = parsed
		} else {
			if m, ok := parsed.Value().(map[string]any); ok {
				m["_table"] = table
				return []Hit{m}
			}
			return nil
		}
	}

	var hits []Hit
	for _, item := range list.Array() {
		if m, ok := item.Value().(map[string]any); ok {
			m["_table"] = table
			hits = append(hits, m)
		}
	}
	return hits
}

func (s *Searcher) rerank(ctx context.Context, query string, hits []Hit, topK int) []Hit {
	docs := make([]string, len(hits))
	for i, hit := range hits {
		doc := hit
		if src, ok := hit["_source"].(map[string]any); ok {
			doc = src
		}
		docs[i] = docText(doc)
	}

	ranked, err := s.reranker.Rerank(ctx, query, docs, topK)
	if err != nil {
		// a rerank failure degrades to the pre-rerank order
		logger.ContextKV(ctx, xlog.WARNING, "reason", "rerank failed", "err", err.Error())
		return hits
	}

	reranked := make([]Hit, 0, len(ranked))
	for _, doc := range ranked {
		if doc.Index < 0 || doc.Index >= len(hits) {
			continue
		}
		hit := hits[doc.Index]
		hit["_rerank_score"] = doc.Score
		reranked = append(reranked, hit)
	}
	sortByScore(reranked, "_rerank_score")
	if len(reranked) > topK {
		reranked = reranked[:topK]
	}
	return reranked
}

// docText flattens a document into the text handed to the reranker.
// Keys are sorted so the output is deterministic.
func docText(doc map[string]any) string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		v := doc[k]
		if v == nil {
			continue
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, " ")
}

func sortByScore(hits []Hit, key string) {
	sort.SliceStable(hits, func(i, j int) bool {
		return score(hits[i], key) > score(hits[j], key)
	})
}

func score(hit Hit, key string) float64 {
	if v, ok := hit[key].(float64); ok {
		return v
	}
	return 0
}
