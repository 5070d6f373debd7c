package obdb

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

// ErrNotReadOnly is returned for statements rejected by the read-only guard.
var ErrNotReadOnly = errors.New("'sql' should start with 'SELECT|SHOW|WITH'")

var readOnlyRe = regexp.MustCompile(`(?is)^\s*(SELECT|SHOW|WITH)\s`)

// EnsureReadOnly rejects any statement that does not begin with SELECT, SHOW
// or WITH. The check is case-insensitive and ignores leading whitespace.
// It is a keyword allow-list, not a parser: everything not explicitly allowed
// is rejected.
func EnsureReadOnly(sql string) error {
	if !readOnlyRe.MatchString(sql) {
		return errors.WithStack(ErrNotReadOnly)
	}
	return nil
}
