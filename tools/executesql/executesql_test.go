package executesql_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/jmoiron/sqlx"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/obstack/obtools/tools/executesql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTool(t *testing.T) (*executesql.Tool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	cfg := &obdb.Config{Hostname: "localhost", Port: 2881, DBName: "test", Username: "root"}
	tool, err := executesql.New(cfg)
	require.NoError(t, err)
	tool = tool.WithConnect(func(cfg *obdb.Config, _ *obdb.Options) (*obdb.Client, error) {
		return obdb.NewFromDB(sqlx.NewDb(db, "sqlmock"), cfg), nil
	})
	return tool, mock
}

func TestToolMeta(t *testing.T) {
	tool, _ := newTool(t)
	assert.Equal(t, "ExecuteSQL", tool.Name())
	assert.NotEmpty(t, tool.Description())
	assert.NotNil(t, tool.Parameters())
}

func TestRunJSON(t *testing.T) {
	gofakeit.Seed(11)
	tool, mock := newTool(t)

	name1, name2 := gofakeit.Name(), gofakeit.Name()
	mock.ExpectQuery("SELECT id, name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, name1).
			AddRow(2, name2))

	res, err := tool.Run(context.Background(), &executesql.Request{
		SQL: "SELECT id, name FROM users",
	})
	require.NoError(t, err)
	assert.Equal(t, "json", res.Format)
	assert.Equal(t, "application/json", res.ContentType)
	assert.Equal(t, 2, res.RowCount)
	assert.False(t, res.IsBlob())
	assert.Empty(t, res.Filename)

	var payload struct {
		Result []map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(res.Content, &payload))
	require.Len(t, payload.Result, 2)
	assert.Equal(t, name1, payload.Result[0]["name"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunBlobFormat(t *testing.T) {
	tool, mock := newTool(t)

	mock.ExpectQuery("SELECT id FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	res, err := tool.Run(context.Background(), &executesql.Request{
		SQL:    "SELECT id FROM users",
		Format: "csv",
	})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", res.ContentType)
	assert.Equal(t, "result.csv", res.Filename)
	assert.True(t, res.IsBlob())
	assert.Equal(t, "id\n1\n", string(res.Content))
}

func TestRunRejectsWrites(t *testing.T) {
	tool, _ := newTool(t)

	_, err := tool.Run(context.Background(), &executesql.Request{
		SQL: "DELETE FROM users",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SELECT|SHOW|WITH")
}

func TestRunUnsupportedFormat(t *testing.T) {
	tool, _ := newTool(t)

	_, err := tool.Run(context.Background(), &executesql.Request{
		SQL:    "SELECT 1",
		Format: "pdf",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRunInvalidOptions(t *testing.T) {
	tool, _ := newTool(t)

	_, err := tool.Run(context.Background(), &executesql.Request{
		SQL:           "SELECT 1",
		ConfigOptions: "{not json",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON for connect options")
}

func TestRunMissingSQL(t *testing.T) {
	tool, _ := newTool(t)

	_, err := tool.Run(context.Background(), &executesql.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")
}

func TestCall(t *testing.T) {
	tool, mock := newTool(t)

	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	out, err := tool.Call(context.Background(), "```json\n{\"sql\": \"SELECT 1\"}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":[{"1":1}]}`, out)
}
