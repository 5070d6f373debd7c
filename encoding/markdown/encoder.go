package markdown

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	csvenc "github.com/obstack/obtools/encoding/csv"
	"github.com/obstack/obtools/pkg/obdb"
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode renders the rows as a GitHub-flavored markdown table. Header case
// follows the column names as returned by the database.
func (e *Encoder) Encode(rs *obdb.ResultSet) ([]byte, error) {
	if rs.Count() == 0 && len(rs.Columns) == 0 {
		return []byte("No results found."), nil
	}

	var buf bytes.Buffer
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(rs.Columns)

	for _, row := range rs.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = csvenc.Stringify(v)
		}
		if err := table.Append(record); err != nil {
			return nil, errors.Wrap(err, "failed to append row")
		}
	}
	if err := table.Render(); err != nil {
		return nil, errors.Wrap(err, "failed to render table")
	}
	return buf.Bytes(), nil
}

func (e *Encoder) ContentType() string {
	return "text/markdown"
}

func (e *Encoder) Filename() string {
	return "result.md"
}
