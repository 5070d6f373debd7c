package store

import (
	"context"
	"strings"

	"github.com/effective-security/xlog"
	"github.com/obstack/obtools/pkg/obdb"
)

// CachedInspector front-ends an obdb.Inspector with a SchemaStore. Entries are
// always introspected with constraints so one cache entry serves both shapes;
// failed introspections are never cached.
type CachedInspector struct {
	insp  *obdb.Inspector
	cache SchemaStore
	conn  string
}

// NewCachedInspector wraps the inspector with a schema cache. A nil cache
// makes every call a pass-through.
func NewCachedInspector(insp *obdb.Inspector, cache SchemaStore, conn string) *CachedInspector {
	return &CachedInspector{insp: insp, cache: cache, conn: conn}
}

// TableNames lists the tables of the current database. Never cached, so a
// freshly created table shows up right away.
func (c *CachedInspector) TableNames(ctx context.Context) ([]string, error) {
	return c.insp.TableNames(ctx)
}

// GetTableInfo introspects the given tables, or every table of the database
// when the list is empty, consulting the cache first.
func (c *CachedInspector) GetTableInfo(ctx context.Context, tables []string, includeConstraints bool) (map[string]*obdb.TableInfo, error) {
	if c.cache == nil {
		return c.insp.GetTableInfo(ctx, tables, includeConstraints)
	}

	if len(tables) == 0 {
		var err error
		tables, err = c.insp.TableNames(ctx)
		if err != nil {
			return nil, err
		}
	}

	infos := make(map[string]*obdb.TableInfo, len(tables))
	var missing []string
	for _, table := range tables {
		table = strings.TrimSpace(table)
		if table == "" {
			continue
		}
		if info, ok := c.cache.GetTableInfo(ctx, c.conn, table); ok {
			infos[table] = trimConstraints(info, includeConstraints)
			continue
		}
		missing = append(missing, table)
	}

	if len(missing) > 0 {
		fetched, err := c.insp.GetTableInfo(ctx, missing, true)
		if err != nil {
			return nil, err
		}
		for table, info := range fetched {
			if info.Error == "" {
				if err := c.cache.SetTableInfo(ctx, c.conn, table, info); err != nil {
					logger.ContextKV(ctx, xlog.WARNING, "reason", "schema cache set", "table", table, "err", err.Error())
				}
			}
			infos[table] = trimConstraints(info, includeConstraints)
		}
	}
	return infos, nil
}

// GetSearchColumns returns the vector and full-text columns of the table,
// consulting the cache first.
func (c *CachedInspector) GetSearchColumns(ctx context.Context, table string) (*obdb.SearchColumns, error) {
	if c.cache == nil {
		return c.insp.GetSearchColumns(ctx, table)
	}
	if sc, ok := c.cache.GetSearchColumns(ctx, c.conn, table); ok {
		return sc, nil
	}
	sc, err := c.insp.GetSearchColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetSearchColumns(ctx, c.conn, table, sc); err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "reason", "schema cache set", "table", table, "err", err.Error())
	}
	return sc, nil
}

func trimConstraints(info *obdb.TableInfo, includeConstraints bool) *obdb.TableInfo {
	if includeConstraints || info == nil {
		return info
	}
	trimmed := *info
	trimmed.PrimaryKeys = nil
	trimmed.ForeignKeys = nil
	trimmed.Indexes = nil
	return &trimmed
}
