// Package executesql provides a tool that runs read-only SQL against an
// OceanBase database and serializes the result set.
package executesql

import (
	"context"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/encoding"
	"github.com/obstack/obtools/pkg/llmutils"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/obstack/obtools/pkg/schema"
	"github.com/obstack/obtools/tools"
)

const ToolName = "ExecuteSQL"

// Request represents the tool input.
type Request struct {
	SQL           string `json:"sql" yaml:"sql" validate:"required" jsonschema:"title=sql,description=The read-only SQL statement to execute. Must start with SELECT or SHOW or WITH."`
	Format        string `json:"format,omitempty" yaml:"format,omitempty" jsonschema:"title=format,description=The output format: json | md | csv | yaml | toml | xlsx | html. Defaults to json."`
	ConfigOptions string `json:"config_options,omitempty" yaml:"config_options,omitempty" jsonschema:"title=config_options,description=Optional JSON object with connection options."`
}

// Result carries the serialized result set. Content is the encoded payload;
// blob formats additionally carry a filename for the attachment.
type Result struct {
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename,omitempty"`
	RowCount    int    `json:"row_count"`
	Content     []byte `json:"content"`
}

// IsBlob reports whether the content should be returned as an attachment.
func (r *Result) IsBlob() bool {
	return encoding.IsBlob(r.Format)
}

// Tool executes read-only SQL statements.
type Tool struct {
	name        string
	description string
	funcParams  any

	cfg     *obdb.Config
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
		description: "Executes a read-only SQL statement (SELECT, SHOW or WITH) against OceanBase and returns the result set in the requested format.",
		funcParams:  sc.Parameters,
		cfg:         cfg,
		connect:     obdb.New,
	}
	return tool, nil
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
	sql := strings.TrimSpace(req.SQL)
	if err := obdb.EnsureReadOnly(sql); err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = encoding.FormatJSON
	}
	enc, err := encoding.NewResultEncoder(format)
	if err != nil {
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

	rs, err := client.Query(ctx, sql)
	if err != nil {
		return nil, err
	}

	content, err := enc.Encode(rs)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Format:      format,
		ContentType: enc.ContentType(),
		RowCount:    rs.Count(),
		Content:     content,
	}
	if encoding.IsBlob(format) {
		res.Filename = enc.Filename()
	}
	return res, nil
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
	if out.IsBlob() {
		// []byte marshals as base64, with the content type alongside
		return llmutils.ToJSON(out), nil
	}
	return string(out.Content), nil
}
