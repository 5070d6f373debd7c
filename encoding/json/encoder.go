package json

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/obdb"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

type payload struct {
	Result []*orderedmap.OrderedMap[string, any] `json:"result"`
}

// Encode marshals the rows as a JSON object list under "result". Ordered maps
// keep the statement's column order in the output.
func (e *Encoder) Encode(rs *obdb.ResultSet) ([]byte, error) {
	bs, err := json.Marshal(payload{Result: rs.Records()})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal result")
	}
	return bs, nil
}

func (e *Encoder) ContentType() string {
	return "application/json"
}

func (e *Encoder) Filename() string {
	return "result.json"
}
