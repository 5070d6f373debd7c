package obdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// Column describes a single table column.
type Column struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	Default  any    `json:"default" yaml:"default"`
	Comment  string `json:"comment" yaml:"comment"`
}

// ForeignKey describes a referential constraint.
type ForeignKey struct {
	ReferredTable      string   `json:"referred_table" yaml:"referred_table"`
	ReferredColumns    []string `json:"referred_columns" yaml:"referred_columns"`
	ConstrainedColumns []string `json:"constrained_columns" yaml:"constrained_columns"`
}

// Index describes a table index.
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique" yaml:"unique"`
	Type    string   `json:"type,omitempty" yaml:"type,omitempty"`
}

// TableInfo is the introspection result for one table. A failed table carries
// the failure in Error instead of failing the whole introspection call.
type TableInfo struct {
	TableName   string       `json:"table_name" yaml:"table_name"`
	Comment     string       `json:"comment,omitempty" yaml:"comment,omitempty"`
	Columns     []Column     `json:"columns,omitempty" yaml:"columns,omitempty"`
	PrimaryKeys []string     `json:"primary_keys,omitempty" yaml:"primary_keys,omitempty"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
	Indexes     []Index      `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	Error       string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// SearchColumns lists the columns of a table relevant for hybrid search.
type SearchColumns struct {
	Vector   []string `json:"vector_columns"`
	Fulltext []string `json:"fulltext_columns"`
	All      []string `json:"all_columns"`
}

// HasSearchIndex reports whether the table can serve a hybrid search.
func (sc *SearchColumns) HasSearchIndex() bool {
	return len(sc.Vector) > 0 || len(sc.Fulltext) > 0
}

// Inspector reads table metadata from information_schema.
type Inspector struct {
	client *Client
}

// NewInspector creates an inspector on top of an open client.
func NewInspector(client *Client) *Inspector {
	return &Inspector{client: client}
}

// TableNames lists the tables of the current database.
func (i *Inspector) TableNames(ctx context.Context) ([]string, error) {
	rs, err := i.client.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to list tables")
	}
	names := make([]string, 0, rs.Count())
	for _, row := range rs.Rows {
		names = append(names, toString(row[0]))
	}
	return names, nil
}

// GetTableInfo introspects the given tables, or every table of the database
// when the list is empty. Per-table failures are reported in the result,
// keyed by table name.
func (i *Inspector) GetTableInfo(ctx context.Context, tables []string, includeConstraints bool) (map[string]*TableInfo, error) {
	if len(tables) == 0 {
		var err error
		tables, err = i.TableNames(ctx)
		if err != nil {
			return nil, err
		}
	}

	infos := make(map[string]*TableInfo, len(tables))
	for _, table := range tables {
		table = strings.TrimSpace(table)
		if table == "" {
			continue
		}
		info, err := i.tableInfo(ctx, table, includeConstraints)
		if err != nil {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "table introspection failed", "table", table, "err", err.Error())
			info = &TableInfo{TableName: table, Error: err.Error()}
		}
		infos[table] = info
	}
	return infos, nil
}

func (i *Inspector) tableInfo(ctx context.Context, table string, includeConstraints bool) (*TableInfo, error) {
	info := &TableInfo{TableName: table}

	rs, err := i.client.Query(ctx,
		`SELECT column_name, column_type, is_nullable, column_default, column_comment
		 FROM information_schema.columns
		 WHERE table_schema = DATABASE() AND table_name = ?
		 ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get columns for %q", table)
	}
	if rs.Count() == 0 {
		return nil, errors.Errorf("table %q not found", table)
	}
	for _, row := range rs.Rows {
		info.Columns = append(info.Columns, Column{
			Name:     toString(row[0]),
			Type:     toString(row[1]),
			Nullable: strings.EqualFold(toString(row[2]), "YES"),
			Default:  row[3],
			Comment:  toString(row[4]),
		})
	}

	rs, err = i.client.Query(ctx,
		`SELECT table_comment FROM information_schema.tables
		 WHERE table_schema = DATABASE() AND table_name = ?`, table)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get comment for %q", table)
	}
	if rs.Count() > 0 {
		info.Comment = toString(rs.Rows[0][0])
	}

	if !includeConstraints {
		return info, nil
	}

	if info.PrimaryKeys, err = i.primaryKeys(ctx, table); err != nil {
		return nil, err
	}
	if info.ForeignKeys, err = i.foreignKeys(ctx, table); err != nil {
		return nil, err
	}
	if info.Indexes, err = i.indexes(ctx, table); err != nil {
		return nil, err
	}
	return info, nil
}

func (i *Inspector) primaryKeys(ctx context.Context, table string) ([]string, error) {
	rs, err := i.client.Query(ctx,
		`SELECT column_name FROM information_schema.key_column_usage
		 WHERE table_schema = DATABASE() AND table_name = ? AND constraint_name = 'PRIMARY'
		 ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get primary keys for %q", table)
	}
	var keys []string
	for _, row := range rs.Rows {
		keys = append(keys, toString(row[0]))
	}
	return keys, nil
}

func (i *Inspector) foreignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rs, err := i.client.Query(ctx,
		`SELECT constraint_name, column_name, referenced_table_name, referenced_column_name
		 FROM information_schema.key_column_usage
		 WHERE table_schema = DATABASE() AND table_name = ? AND referenced_table_name IS NOT NULL
		 ORDER BY constraint_name, ordinal_position`, table)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get foreign keys for %q", table)
	}

	var fks []ForeignKey
	byName := map[string]int{}
	for _, row := range rs.Rows {
		name := toString(row[0])
		idx, ok := byName[name]
		if !ok {
			fks = append(fks, ForeignKey{ReferredTable: toString(row[2])})
			idx = len(fks) - 1
			byName[name] = idx
		}
		fks[idx].ConstrainedColumns = append(fks[idx].ConstrainedColumns, toString(row[1]))
		fks[idx].ReferredColumns = append(fks[idx].ReferredColumns, toString(row[3]))
	}
	return fks, nil
}

func (i *Inspector) indexes(ctx context.Context, table string) ([]Index, error) {
	rs, err := i.client.Query(ctx,
		`SELECT index_name, column_name, non_unique, index_type
		 FROM information_schema.statistics
		 WHERE table_schema = DATABASE() AND table_name = ? AND index_name != 'PRIMARY'
		 ORDER BY index_name, seq_in_index`, table)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get indexes for %q", table)
	}

	var indexes []Index
	byName := map[string]int{}
	for _, row := range rs.Rows {
		name := toString(row[0])
		idx, ok := byName[name]
		if !ok {
			indexes = append(indexes, Index{
				Name:   name,
				Unique: toString(row[2]) == "0",
				Type:   toString(row[3]),
			})
			idx = len(indexes) - 1
			byName[name] = idx
		}
		indexes[idx].Columns = append(indexes[idx].Columns, toString(row[1]))
	}
	return indexes, nil
}

// GetSearchColumns inspects the table for vector columns and full-text index
// columns. Vector columns are recognized by type; full-text columns come from
// FULLTEXT indexes.
func (i *Inspector) GetSearchColumns(ctx context.Context, table string) (*SearchColumns, error) {
	info, err := i.tableInfo(ctx, table, true)
	if err != nil {
		return nil, err
	}

	sc := &SearchColumns{}
	for _, col := range info.Columns {
		sc.All = append(sc.All, col.Name)
		typ := strings.ToUpper(col.Type)
		if strings.Contains(typ, "VECTOR") || strings.Contains(typ, "EMBEDDING") {
			sc.Vector = append(sc.Vector, col.Name)
		}
	}
	for _, idx := range info.Indexes {
		if strings.EqualFold(idx.Type, "FULLTEXT") {
			sc.Fulltext = append(sc.Fulltext, idx.Columns...)
		}
	}
	return sc, nil
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
