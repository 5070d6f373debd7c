package mcpserver

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/obstack/obtools/pkg/llmutils"
	"github.com/obstack/obtools/pkg/metricskey"
	"github.com/obstack/obtools/pkg/schema"
	"github.com/obstack/obtools/tools"
	"github.com/obstack/obtools/tools/executesql"
	"github.com/obstack/obtools/tools/hybridsearch"
	"github.com/obstack/obtools/tools/tableschema"
	"github.com/obstack/obtools/tools/text2sql"
)

func (s *Server) registerTools() error {
	exec, err := executesql.New(s.cfg.DB)
	if err != nil {
		return err
	}
	tblschema, err := tableschema.New(s.cfg.DB)
	if err != nil {
		return err
	}
	t2s, err := text2sql.New(s.cfg.DB, s.cfg.LLM)
	if err != nil {
		return err
	}
	search, err := hybridsearch.New(s.cfg.DB, s.cfg.LLM)
	if err != nil {
		return err
	}
	if s.cfg.Cache != nil {
		tblschema.WithCache(s.cfg.Cache)
		t2s.WithCache(s.cfg.Cache)
		search.WithCache(s.cfg.Cache)
	}

	cb := tools.NewFanout(tools.NewPackageLogger(logger), tools.NewMetrics())

	if err := addTool[executesql.Request, executesql.Result](s.mcp, exec, cb); err != nil {
		return err
	}
	if err := addTool[tableschema.Request, tableschema.Result](s.mcp, tblschema, cb); err != nil {
		return err
	}
	if err := addTool[text2sql.Request, text2sql.Result](s.mcp, t2s, cb); err != nil {
		return err
	}
	return addTool[hybridsearch.Request, hybridsearch.Result](s.mcp, search, cb)
}

// addTool registers a typed tool on the MCP server. The input schema is the
// tool's own parameters definition; the output schema is reflected from the
// result type the same way.
func addTool[I, O any](srv *mcp.Server, tool tools.Tool[I, O], cb tools.Callback) error {
	in, err := mcpSchema(tool.Parameters())
	if err != nil {
		return errors.WithMessagef(err, "failed to create input schema for %s", tool.Name())
	}
	outParams, err := schema.New(reflect.TypeOf(*new(O)))
	if err != nil {
		return errors.WithMessagef(err, "failed to reflect output schema for %s", tool.Name())
	}
	out, err := mcpSchema(outParams.Parameters)
	if err != nil {
		return errors.WithMessagef(err, "failed to create output schema for %s", tool.Name())
	}

	mcp.AddTool(srv, &mcp.Tool{
		Name:         tool.Name(),
		Description:  tool.Description(),
		InputSchema:  in,
		OutputSchema: out,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, req I) (*mcp.CallToolResult, O, error) {
		started := time.Now()
		input := llmutils.ToJSON(req)
		cb.OnToolStart(ctx, tool, input)
		res, err := tool.Run(ctx, &req)
		metricskey.PerfToolCall.MeasureSince(started, tool.Name())
		if err != nil {
			cb.OnToolError(ctx, tool, input, err)
			var zero O
			return nil, zero, err
		}
		cb.OnToolEnd(ctx, tool, input, llmutils.ToJSON(res))
		return nil, *res, nil
	})
	return nil
}

// mcpSchema converts a parameters definition into the SDK's schema type
// through its JSON form, so the tool structs keep a single source of truth
// for their schema tags.
func mcpSchema(params any) (*jsonschema.Schema, error) {
	js, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var sc jsonschema.Schema
	if err := json.Unmarshal(js, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
