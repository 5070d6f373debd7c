package obdb

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ResultSet is a fully materialized query result with column order preserved.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ReadRows drains rows into a ResultSet. []byte values are converted to
// strings, as the MySQL driver returns text-protocol values as byte slices.
func ReadRows(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get columns")
	}

	rs := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		for i, v := range values {
			if bs, ok := v.([]byte); ok {
				values[i] = string(bs)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate rows")
	}
	return rs, nil
}

// Count returns the number of rows.
func (rs *ResultSet) Count() int {
	return len(rs.Rows)
}

// Records returns the rows as ordered column->value maps, preserving the
// column order of the statement. Ordered maps marshal to JSON with keys in
// insertion order.
func (rs *ResultSet) Records() []*orderedmap.OrderedMap[string, any] {
	records := make([]*orderedmap.OrderedMap[string, any], 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rec := orderedmap.New[string, any](len(rs.Columns))
		for i, col := range rs.Columns {
			rec.Set(col, row[i])
		}
		records = append(records, rec)
	}
	return records
}

// Maps returns the rows as plain maps, for encoders that do not keep key
// order (yaml, toml).
func (rs *ResultSet) Maps() []map[string]any {
	maps := make([]map[string]any, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		m := make(map[string]any, len(rs.Columns))
		for i, col := range rs.Columns {
			m[col] = row[i]
		}
		maps = append(maps, m)
	}
	return maps
}
