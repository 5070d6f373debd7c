// Package store caches table introspection results so repeated tool calls
// against the same database do not re-query information_schema every time.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/effective-security/xlog"
	"github.com/obstack/obtools/pkg/obdb"
)

var logger = xlog.NewPackageLogger("github.com/obstack/obtools", "store")

// DefaultTTL is how long cached schema entries stay valid.
const DefaultTTL = 5 * time.Minute

// SchemaStore caches per-table introspection results, keyed by connection
// identity and table name. Lookups report a miss instead of failing, so a
// broken cache never breaks a tool call.
type SchemaStore interface {
	GetTableInfo(ctx context.Context, conn, table string) (*obdb.TableInfo, bool)
	SetTableInfo(ctx context.Context, conn, table string, info *obdb.TableInfo) error
	GetSearchColumns(ctx context.Context, conn, table string) (*obdb.SearchColumns, bool)
	SetSearchColumns(ctx context.Context, conn, table string, sc *obdb.SearchColumns) error
	// Invalidate drops every cached entry for the connection.
	Invalidate(ctx context.Context, conn string) error
}

// connHash folds the connection identity into a fixed-width hex token so
// hostnames and usernames never appear in cache keys.
func connHash(conn string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(conn))
}
