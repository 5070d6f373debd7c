package encoding_test

import (
	"strings"
	"testing"

	"github.com/obstack/obtools/encoding"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResultSet() *obdb.ResultSet {
	return &obdb.ResultSet{
		Columns: []string{"id", "name", "note"},
		Rows: [][]any{
			{int64(1), "alice", "first | row"},
			{int64(2), "bob", nil},
		},
	}
}

func TestNewResultEncoder(t *testing.T) {
	for _, format := range encoding.Formats {
		enc, err := encoding.NewResultEncoder(format)
		require.NoError(t, err, "format %s", format)
		require.NotNil(t, enc)
		assert.NotEmpty(t, enc.ContentType())
		assert.NotEmpty(t, enc.Filename())
	}

	_, err := encoding.NewResultEncoder("parquet")
	assert.EqualError(t, err, "unsupported format: parquet")
}

func TestIsBlob(t *testing.T) {
	assert.False(t, encoding.IsBlob(encoding.FormatJSON))
	assert.False(t, encoding.IsBlob(encoding.FormatMarkdown))
	assert.True(t, encoding.IsBlob(encoding.FormatCSV))
	assert.True(t, encoding.IsBlob(encoding.FormatYAML))
	assert.True(t, encoding.IsBlob(encoding.FormatTOML))
	assert.True(t, encoding.IsBlob(encoding.FormatXLSX))
	assert.True(t, encoding.IsBlob(encoding.FormatHTML))
}

func TestEncodeAllFormats(t *testing.T) {
	rs := testResultSet()
	for _, format := range encoding.Formats {
		enc, err := encoding.NewResultEncoder(format)
		require.NoError(t, err)
		out, err := enc.Encode(rs)
		require.NoError(t, err, "format %s", format)
		assert.NotEmpty(t, out, "format %s", format)
	}
}

func TestEncodeJSON(t *testing.T) {
	enc, err := encoding.NewResultEncoder(encoding.FormatJSON)
	require.NoError(t, err)
	out, err := enc.Encode(testResultSet())
	require.NoError(t, err)

	exp := `{"result":[{"id":1,"name":"alice","note":"first | row"},{"id":2,"name":"bob","note":null}]}`
	assert.JSONEq(t, exp, string(out))
	// column order must survive serialization
	assert.Less(t, strings.Index(string(out), `"id"`), strings.Index(string(out), `"name"`))
	assert.Equal(t, "application/json", enc.ContentType())
	assert.Equal(t, "result.json", enc.Filename())
}

func TestEncodeCSV(t *testing.T) {
	enc, err := encoding.NewResultEncoder(encoding.FormatCSV)
	require.NoError(t, err)
	out, err := enc.Encode(testResultSet())
	require.NoError(t, err)

	exp := "id,name,note\n1,alice,first | row\n2,bob,\n"
	assert.Equal(t, exp, string(out))
}

func TestEncodeMarkdown(t *testing.T) {
	enc, err := encoding.NewResultEncoder(encoding.FormatMarkdown)
	require.NoError(t, err)
	out, err := enc.Encode(testResultSet())
	require.NoError(t, err)

	s := string(out)
	lines := strings.Split(strings.TrimSpace(s), "\n")
	require.GreaterOrEqual(t, len(lines), 4)

	// Header keeps the column name case, followed by the separator row.
	assert.Contains(t, lines[0], "| id ")
	assert.Contains(t, lines[0], "| name ")
	assert.Contains(t, lines[0], "| note ")
	assert.NotContains(t, lines[0], "ID")
	assert.Contains(t, lines[1], "---")
	assert.Contains(t, s, "alice")
	assert.Contains(t, s, "bob")
}

func TestEncodeMarkdownEmpty(t *testing.T) {
	enc, err := encoding.NewResultEncoder(encoding.FormatMarkdown)
	require.NoError(t, err)
	out, err := enc.Encode(&obdb.ResultSet{})
	require.NoError(t, err)
	assert.Equal(t, "No results found.", string(out))
}

func TestEncodeYAML(t *testing.T) {
	enc, err := encoding.NewResultEncoder(encoding.FormatYAML)
	require.NoError(t, err)
	out, err := enc.Encode(testResultSet())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "result:")
	assert.Contains(t, s, "name: alice")
	assert.Contains(t, s, "note: null")
	assert.Less(t, strings.Index(s, "id:"), strings.Index(s, "name:"))
}

func TestEncodeTOML(t *testing.T) {
	enc, err := encoding.NewResultEncoder(encoding.FormatTOML)
	require.NoError(t, err)
	out, err := enc.Encode(testResultSet())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "[[result]]")
	assert.Contains(t, s, `name = "alice"`)
	// TOML has no null, NULL columns become empty strings
	assert.Contains(t, s, `note = ""`)
}

func TestEncodeHTML(t *testing.T) {
	enc, err := encoding.NewResultEncoder(encoding.FormatHTML)
	require.NoError(t, err)

	rs := testResultSet()
	rs.Rows[0][1] = "<script>alert(1)</script>"
	out, err := enc.Encode(rs)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "<table>")
	assert.Contains(t, s, "<th>id</th>")
	assert.NotContains(t, s, "<script>alert(1)</script>")
}

func TestEncodeXLSX(t *testing.T) {
	enc, err := encoding.NewResultEncoder(encoding.FormatXLSX)
	require.NoError(t, err)
	out, err := enc.Encode(testResultSet())
	require.NoError(t, err)

	// xlsx payloads are zip archives
	require.Greater(t, len(out), 4)
	assert.Equal(t, "PK", string(out[:2]))
}
