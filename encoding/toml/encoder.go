package toml

import (
	"bytes"

	tomlenc "github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/obdb"
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode produces a TOML document with a `result` array of tables.
// TOML has no null value, so NULL columns are emitted as empty strings.
func (e *Encoder) Encode(rs *obdb.ResultSet) ([]byte, error) {
	rows := make([]map[string]any, 0, rs.Count())
	for _, row := range rs.Rows {
		m := make(map[string]any, len(rs.Columns))
		for i, col := range rs.Columns {
			v := row[i]
			if v == nil {
				v = ""
			}
			m[col] = v
		}
		rows = append(rows, m)
	}

	var buf bytes.Buffer
	if err := tomlenc.NewEncoder(&buf).Encode(map[string]any{"result": rows}); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

func (e *Encoder) ContentType() string {
	return "application/toml"
}

func (e *Encoder) Filename() string {
	return "result.toml"
}
