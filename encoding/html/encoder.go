package html

import (
	"bytes"
	htmltemplate "html/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
	csvenc "github.com/obstack/obtools/encoding/csv"
	"github.com/obstack/obtools/pkg/obdb"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Query Result</title>
<style>
table { border-collapse: collapse; font-family: sans-serif; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<table>
<thead><tr>{{ range .Columns }}<th>{{ . }}</th>{{ end }}</tr></thead>
<tbody>
{{- range .Rows }}
<tr>{{ range . }}<td>{{ . }}</td>{{ end }}</tr>
{{- end }}
</tbody>
</table>
</body>
</html>
`

var tmpl = htmltemplate.Must(htmltemplate.New("result").Funcs(sprig.HtmlFuncMap()).Parse(pageTemplate))

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode renders the rows as a standalone HTML page with a single table.
func (e *Encoder) Encode(rs *obdb.ResultSet) ([]byte, error) {
	rows := make([][]string, 0, rs.Count())
	for _, row := range rs.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = csvenc.Stringify(v)
		}
		rows = append(rows, record)
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Columns []string
		Rows    [][]string
	}{
		Columns: rs.Columns,
		Rows:    rows,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

func (e *Encoder) ContentType() string {
	return "text/html"
}

func (e *Encoder) Filename() string {
	return "result.html"
}
