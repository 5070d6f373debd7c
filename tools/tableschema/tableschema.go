// Package tableschema provides a tool that returns table structure from an
// OceanBase database, including columns, comments and constraints.
package tableschema

import (
	"context"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/llmutils"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/obstack/obtools/pkg/schema"
	"github.com/obstack/obtools/store"
	"github.com/obstack/obtools/tools"
)

const ToolName = "GetTableSchema"

// Request represents the tool input.
type Request struct {
	Tables        string `json:"tables,omitempty" yaml:"tables,omitempty" jsonschema:"title=tables,description=Comma-separated table names. Empty means every table in the database."`
	ConfigOptions string `json:"config_options,omitempty" yaml:"config_options,omitempty" jsonschema:"title=config_options,description=Optional JSON object with connection options."`
}

// Result maps table names to their introspected structure. A table that
// failed introspection carries the failure in its Error field.
type Result struct {
	Tables map[string]*obdb.TableInfo `json:"tables"`
}

// Tool introspects table schemas.
type Tool struct {
	name        string
	description string
	funcParams  any

	cfg     *obdb.Config
	cache   store.SchemaStore
	connect func(cfg *obdb.Config, opts *obdb.Options) (*obdb.Client, error)
}

var _ tools.Tool[Request, Result] = (*Tool)(nil)

func New(cfg *obdb.Config) (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &Tool{
		name:        ToolName,
		description: "Returns the schema of OceanBase tables: columns with types and comments plus primary keys and foreign keys and indexes.",
		funcParams:  sc.Parameters,
		cfg:         cfg,
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

// SplitTables parses a comma-separated table list, dropping empty entries.
func SplitTables(tables string) []string {
	var out []string
	for _, table := range strings.Split(tables, ",") {
		table = strings.TrimSpace(table)
		if table != "" {
			out = append(out, table)
		}
	}
	return out
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Result, error) {
	opts, err := obdb.ParseOptions(req.ConfigOptions)
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
	infos, err := insp.GetTableInfo(ctx, SplitTables(req.Tables), true)
	if err != nil {
		return nil, err
	}
	return &Result{Tables: infos}, nil
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
	return llmutils.ToJSON(out.Tables), nil
}
