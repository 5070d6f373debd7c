package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/obdb"
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode writes a header row followed by the data rows. NULL values are
// written as empty cells.
func (e *Encoder) Encode(rs *obdb.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(rs.Columns); err != nil {
		return nil, errors.Wrap(err, "failed to write header")
	}
	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			record[i] = Stringify(v)
		}
		if err := w.Write(record); err != nil {
			return nil, errors.Wrap(err, "failed to write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush")
	}
	return buf.Bytes(), nil
}

func (e *Encoder) ContentType() string {
	return "text/csv"
}

func (e *Encoder) Filename() string {
	return "result.csv"
}

// Stringify renders a cell value for text formats.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
