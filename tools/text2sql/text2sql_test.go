package text2sql_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/obstack/obtools/pkg/llms"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/obstack/obtools/tools/text2sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error

	gotMessages []llms.Message
}

func (f *fakeLLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOpenAI
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.gotMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.response}},
	}, nil
}

type fakeFactory struct {
	model llms.Model

	gotToolName string
	gotNames    []string
}

func (f *fakeFactory) DefaultModel() (llms.Model, error) {
	return f.model, nil
}

func (f *fakeFactory) ModelByType(string) (llms.Model, error) {
	return f.model, nil
}

func (f *fakeFactory) ModelByName(names ...string) (llms.Model, error) {
	f.gotNames = names
	return f.model, nil
}

func (f *fakeFactory) ToolModel(toolName string, _ ...string) (llms.Model, error) {
	f.gotToolName = toolName
	return f.model, nil
}

func (f *fakeFactory) Embedder() (llms.Embedder, error) {
	return nil, nil
}

func (f *fakeFactory) Reranker() (llms.Reranker, error) {
	return nil, nil
}

func newTool(t *testing.T, llm llms.Model) (*text2sql.Tool, *fakeFactory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	cfg := &obdb.Config{Hostname: "localhost", Port: 2881, DBName: "test", Username: "root"}
	factory := &fakeFactory{model: llm}
	tool, err := text2sql.New(cfg, factory)
	require.NoError(t, err)
	tool = tool.WithConnect(func(cfg *obdb.Config, _ *obdb.Options) (*obdb.Client, error) {
		return obdb.NewFromDB(sqlx.NewDb(db, "sqlmock"), cfg), nil
	})
	return tool, factory, mock
}

// expectTableContext queues the introspection queries used for the prompt
// context, without constraints.
func expectTableContext(mock sqlmock.Sqlmock, table string) {
	mock.ExpectQuery("SELECT column_name, column_type").
		WithArgs(table).
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type", "is_nullable", "column_default", "column_comment"}).
			AddRow("id", "bigint", "NO", nil, "").
			AddRow("name", "varchar(255)", "YES", nil, ""))
	mock.ExpectQuery("SELECT table_comment").
		WithArgs(table).
		WillReturnRows(sqlmock.NewRows([]string{"table_comment"}).AddRow(""))
}

func TestRun(t *testing.T) {
	llm := &fakeLLM{response: "```sql\nSELECT COUNT(*) FROM employees;\n```"}
	tool, factory, mock := newTool(t, llm)

	expectTableContext(mock, "employees")

	res, err := tool.Run(context.Background(), &text2sql.Request{
		Query:  "How many employees are there",
		Tables: "employees",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM employees;", res.SQL)
	assert.Equal(t, "text2sql", factory.gotToolName)

	require.Len(t, llm.gotMessages, 2)
	assert.Equal(t, llms.RoleSystem, llm.gotMessages[0].Role)
	assert.Contains(t, llm.gotMessages[0].GetContent(), "MySQL expert")
	assert.Equal(t, llms.RoleHuman, llm.gotMessages[1].Role)
	assert.Contains(t, llm.gotMessages[1].GetContent(), "How many employees are there")
	assert.Contains(t, llm.gotMessages[1].GetContent(), `"table_name": "employees"`)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunPreferredModel(t *testing.T) {
	llm := &fakeLLM{response: "SELECT 1"}
	tool, factory, mock := newTool(t, llm)

	expectTableContext(mock, "employees")

	res, err := tool.Run(context.Background(), &text2sql.Request{
		Query:  "ping",
		Tables: "employees",
		Model:  "gpt-4o",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", res.SQL)
	assert.Equal(t, []string{"gpt-4o"}, factory.gotNames)
	assert.Empty(t, factory.gotToolName)
}

func TestRunMissingQuery(t *testing.T) {
	tool, _, _ := newTool(t, &fakeLLM{})

	_, err := tool.Run(context.Background(), &text2sql.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")
}

func TestCall(t *testing.T) {
	llm := &fakeLLM{response: "SELECT name FROM employees LIMIT 5"}
	tool, _, mock := newTool(t, llm)

	expectTableContext(mock, "employees")

	out, err := tool.Call(context.Background(), `{"query": "list employees", "tables": "employees"}`)
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM employees LIMIT 5", out)
}
