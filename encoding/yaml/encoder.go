package yaml

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/obdb"
	yamlv3 "gopkg.in/yaml.v3"
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode produces a YAML document with a top-level `result` sequence.
// Rows are emitted as mapping nodes so the column order survives
// serialization, which yaml.Marshal on a map would not guarantee.
func (e *Encoder) Encode(rs *obdb.ResultSet) ([]byte, error) {
	seq := &yamlv3.Node{Kind: yamlv3.SequenceNode}
	for _, row := range rs.Rows {
		m := &yamlv3.Node{Kind: yamlv3.MappingNode}
		for i, col := range rs.Columns {
			key := &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: col}
			val := &yamlv3.Node{}
			if err := val.Encode(normalize(row[i])); err != nil {
				return nil, errors.WithMessagef(err, "unable to encode column %q", col)
			}
			m.Content = append(m.Content, key, val)
		}
		seq.Content = append(seq.Content, m)
	}

	doc := &yamlv3.Node{
		Kind: yamlv3.MappingNode,
		Content: []*yamlv3.Node{
			{Kind: yamlv3.ScalarNode, Value: "result"},
			seq,
		},
	}

	out, err := yamlv3.Marshal(doc)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case string, bool, int, int32, int64, uint64, float32, float64:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func (e *Encoder) ContentType() string {
	return "text/yaml"
}

func (e *Encoder) Filename() string {
	return "result.yaml"
}
