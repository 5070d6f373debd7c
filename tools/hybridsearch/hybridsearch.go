// Package hybridsearch provides a tool that runs combined vector and
// full-text search over OceanBase tables and returns the merged hits.
package hybridsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/hybrid"
	"github.com/obstack/obtools/pkg/llmfactory"
	"github.com/obstack/obtools/pkg/llmutils"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/obstack/obtools/pkg/schema"
	"github.com/obstack/obtools/store"
	"github.com/obstack/obtools/tools"
	"github.com/obstack/obtools/tools/tableschema"
)

const ToolName = "HybridSearch"

// Request represents the tool input.
type Request struct {
	TableNames    string `json:"table_names" yaml:"table_names" validate:"required" jsonschema:"title=table_names,description=Comma-separated table names to search. Searching more than one table requires a rerank model."`
	Query         string `json:"query" yaml:"query" validate:"required" jsonschema:"title=query,description=The natural-language search query."`
	TopK          int    `json:"top_k,omitempty" yaml:"top_k,omitempty" jsonschema:"title=top_k,description=Maximum number of results. Defaults to 10."`
	Filter        string `json:"filter,omitempty" yaml:"filter,omitempty" jsonschema:"title=filter,description=Optional Elasticsearch-style filter clause as a JSON object."`
	Format        string `json:"format,omitempty" yaml:"format,omitempty" jsonschema:"title=format,description=The output format: json | md. Defaults to json."`
	ConfigOptions string `json:"config_options,omitempty" yaml:"config_options,omitempty" jsonschema:"title=config_options,description=Optional JSON object with connection options."`
}

// Result carries the merged hits and the rendered output.
type Result struct {
	Results []hybrid.Hit `json:"results"`
	Count   int          `json:"count"`
	Format  string       `json:"format"`
	Content string       `json:"-"`
}

// Tool searches tables with vector and full-text indexes.
type Tool struct {
	name        string
	description string
	funcParams  any

	cfg     *obdb.Config
	factory llmfactory.Factory
	cache   store.SchemaStore
	connect func(cfg *obdb.Config, opts *obdb.Options) (*obdb.Client, error)
}

var _ tools.Tool[Request, Result] = (*Tool)(nil)

func New(cfg *obdb.Config, factory llmfactory.Factory) (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &Tool{
		name:        ToolName,
		description: "Performs hybrid vector and full-text search over OceanBase tables with optional reranking and returns the best matching rows.",
		funcParams:  sc.Parameters,
		cfg:         cfg,
		factory:     factory,
		connect:     obdb.New,
	}
	return tool, nil
}

// WithCache adds a schema cache consulted before information_schema.
func (t *Tool) WithCache(cache store.SchemaStore) *Tool {
	t.cache = cache
	return t
}

// WithConnect replaces the connection constructor. Used by tests.
func (t *Tool) WithConnect(connect func(*obdb.Config, *obdb.Options) (*obdb.Client, error)) *Tool {
	t.connect = connect
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Result, error) {
	if err := tools.ValidateRequest(req); err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "md" {
		return nil, errors.Errorf("unsupported format: %s. Supported formats: json, md", format)
	}

	var filter json.RawMessage
	if f := strings.TrimSpace(req.Filter); f != "" {
		if !json.Valid([]byte(f)) {
			return nil, errors.New("invalid JSON for filter")
		}
		filter = json.RawMessage(f)
	}

	opts, err := obdb.ParseOptions(req.ConfigOptions)
	if err != nil {
		return nil, err
	}

	embedder, err := t.factory.Embedder()
	if err != nil {
		return nil, err
	}
	reranker, err := t.factory.Reranker()
	if err != nil {
		return nil, err
	}

	client, err := t.connect(t.cfg, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = client.Close()
	}()

	insp := store.NewCachedInspector(obdb.NewInspector(client), t.cache, t.cfg.CacheKey())
	searcher := hybrid.NewSearcher(client, embedder, reranker).WithInspector(insp)

	hits, err := searcher.Search(ctx, &hybrid.Params{
		Tables: tableschema.SplitTables(req.TableNames),
		Query:  req.Query,
		TopK:   req.TopK,
		Filter: filter,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Results: hits,
		Count:   len(hits),
		Format:  format,
	}
	if format == "md" {
		res.Content = MarkdownTable(hits)
	} else {
		res.Content = llmutils.ToJSON(map[string]any{
			"results": hits,
			"count":   len(hits),
		})
	}
	return res, nil
}

// MarkdownTable renders hits as a markdown table over the union of their
// keys, sorted, with pipes escaped. Empty input renders a placeholder.
func MarkdownTable(hits []hybrid.Hit) string {
	if len(hits) == 0 {
		return "No results found."
	}

	keySet := map[string]struct{}{}
	for _, hit := range hits {
		for k := range hit {
			keySet[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(keySet))
	for k := range keySet {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	var sb strings.Builder
	sb.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("| " + strings.Join(sep, " | ") + " |")

	for _, hit := range hits {
		row := make([]string, len(headers))
		for i, key := range headers {
			value := hit[key]
			if value == nil {
				row[i] = ""
				continue
			}
			row[i] = strings.ReplaceAll(fmt.Sprint(value), "|", "\\|")
		}
		sb.WriteString("\n| " + strings.Join(row, " | ") + " |")
	}
	return sb.String()
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req Request
	if err := tools.UnmarshalInput(input, &req); err != nil {
		return "", err
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return out.Content, nil
}
