// Package text2sql provides a tool that turns a natural-language question
// into an executable SQL query using the configured LLM and live table
// context from the database.
package text2sql

import (
	"context"
	"reflect"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/llmfactory"
	"github.com/obstack/obtools/pkg/llms"
	"github.com/obstack/obtools/pkg/llmutils"
	"github.com/obstack/obtools/pkg/metricskey"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/obstack/obtools/pkg/prompts"
	"github.com/obstack/obtools/pkg/schema"
	"github.com/obstack/obtools/store"
	"github.com/obstack/obtools/tools"
	"github.com/obstack/obtools/tools/tableschema"
)

const ToolName = "Text2SQL"

// Request represents the tool input.
type Request struct {
	Query         string `json:"query" yaml:"query" validate:"required" jsonschema:"title=query,description=The natural-language question to turn into SQL."`
	Tables        string `json:"tables,omitempty" yaml:"tables,omitempty" jsonschema:"title=tables,description=Comma-separated table names to use as context. Empty means every table in the database."`
	Model         string `json:"model,omitempty" yaml:"model,omitempty" jsonschema:"title=model,description=Preferred model name. Empty uses the configured default."`
	ConfigOptions string `json:"config_options,omitempty" yaml:"config_options,omitempty" jsonschema:"title=config_options,description=Optional JSON object with connection options."`
}

// Result carries the generated SQL.
type Result struct {
	SQL string `json:"sql"`
}

// Tool generates SQL from natural language.
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
		description: "Generates an executable MySQL-syntax SQL query for OceanBase from a natural-language question using the table schemas as context.",
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
	infos, err := insp.GetTableInfo(ctx, tableschema.SplitTables(req.Tables), false)
	if err != nil {
		return nil, err
	}

	messages, err := prompts.Text2SQLMessages(renderTableInfo(infos), req.Query)
	if err != nil {
		return nil, err
	}

	var model llms.Model
	modelName := req.Model
	if modelName != "" {
		model, err = t.factory.ModelByName(modelName)
	} else {
		modelName = "default"
		model, err = t.factory.ToolModel("text2sql")
	}
	if err != nil {
		return nil, err
	}
	started := time.Now()
	resp, err := model.GenerateContent(ctx, messages)
	metricskey.PerfLLMCall.MeasureSince(started, modelName)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to generate SQL")
	}
	tools.RecordLLMUsage(t.name, modelName, resp)

	return &Result{SQL: llmutils.CleanSQL(resp.Content())}, nil
}

// renderTableInfo serializes the table structures for the prompt, ordered by
// table name so the prompt is stable across calls.
func renderTableInfo(infos map[string]*obdb.TableInfo) string {
	names := make([]string, 0, len(infos))
	for name := range infos {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]*obdb.TableInfo, 0, len(infos))
	for _, name := range names {
		list = append(list, infos[name])
	}
	return llmutils.ToJSONIndent(list)
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
	return out.SQL, nil
}
