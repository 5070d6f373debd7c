package xlsx

import (
	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode produces an Excel workbook with a header row followed by the data rows.
func (e *Encoder) Encode(rs *obdb.ResultSet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(rs.Columns))
	for i, col := range rs.Columns {
		header[i] = col
	}
	if err := setRow(f, 1, header); err != nil {
		return nil, err
	}

	for i, row := range rs.Rows {
		record := make([]any, len(row))
		for j, v := range row {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[j] = v
		}
		if err := setRow(f, i+2, record); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(f.SetSheetRow(sheetName, cell, &values))
}

func (e *Encoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *Encoder) Filename() string {
	return "result.xlsx"
}
