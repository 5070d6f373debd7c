package tools

import (
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/obstack/obtools/pkg/llmutils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// UnmarshalInput parses a tool input produced by an LLM into the request
// type. Backtick fences and prose around the JSON are stripped first; inputs
// that still fail strict parsing get a second pass with a lenient decoder,
// since models routinely emit trailing commas or unquoted keys.
func UnmarshalInput(input string, req any) error {
	bs := llmutils.CleanJSON([]byte(input))
	if err := json.Unmarshal(bs, req); err != nil {
		if lerr := ljson.Unmarshal(bs, req); lerr != nil {
			return errors.WithSecondaryError(ErrFailedUnmarshalInput, err)
		}
	}
	return nil
}

// ValidateRequest checks the request against its validate tags.
func ValidateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return errors.WithMessage(err, "invalid request")
	}
	return nil
}
