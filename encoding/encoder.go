package encoding

import (
	"github.com/cockroachdb/errors"
	csvenc "github.com/obstack/obtools/encoding/csv"
	htmlenc "github.com/obstack/obtools/encoding/html"
	jsonenc "github.com/obstack/obtools/encoding/json"
	mdenc "github.com/obstack/obtools/encoding/markdown"
	tomlenc "github.com/obstack/obtools/encoding/toml"
	xlsxenc "github.com/obstack/obtools/encoding/xlsx"
	yamlenc "github.com/obstack/obtools/encoding/yaml"
	"github.com/obstack/obtools/pkg/obdb"
)

// ResultEncoder serializes a materialized result set into one output format.
// All encoders serialize the same result set; column order is preserved
// wherever the format can express it.
type ResultEncoder interface {
	Encode(rs *obdb.ResultSet) ([]byte, error)
	// ContentType returns the MIME type of the encoded payload.
	ContentType() string
	// Filename returns the default attachment filename.
	Filename() string
}

type Format = string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatCSV      Format = "csv"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatXLSX     Format = "xlsx"
	FormatHTML     Format = "html"
)

// Formats lists the supported output formats.
var Formats = []Format{
	FormatJSON,
	FormatMarkdown,
	FormatCSV,
	FormatYAML,
	FormatTOML,
	FormatXLSX,
	FormatHTML,
}

// IsBlob reports whether the format is returned as a binary attachment
// rather than inline text.
func IsBlob(format Format) bool {
	switch format {
	case FormatJSON, FormatMarkdown:
		return false
	default:
		return true
	}
}

// NewResultEncoder returns the encoder for the given format.
func NewResultEncoder(format Format) (ResultEncoder, error) {
	switch format {
	case FormatJSON:
		return jsonenc.NewEncoder(), nil
	case FormatMarkdown:
		return mdenc.NewEncoder(), nil
	case FormatCSV:
		return csvenc.NewEncoder(), nil
	case FormatYAML:
		return yamlenc.NewEncoder(), nil
	case FormatTOML:
		return tomlenc.NewEncoder(), nil
	case FormatXLSX:
		return xlsxenc.NewEncoder(), nil
	case FormatHTML:
		return htmlenc.NewEncoder(), nil
	}
	return nil, errors.Errorf("unsupported format: %s", format)
}

var (
	_ ResultEncoder = (*jsonenc.Encoder)(nil)
	_ ResultEncoder = (*mdenc.Encoder)(nil)
	_ ResultEncoder = (*csvenc.Encoder)(nil)
	_ ResultEncoder = (*yamlenc.Encoder)(nil)
	_ ResultEncoder = (*tomlenc.Encoder)(nil)
	_ ResultEncoder = (*xlsxenc.Encoder)(nil)
	_ ResultEncoder = (*htmlenc.Encoder)(nil)
)
