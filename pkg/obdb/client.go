package obdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/jmoiron/sqlx"
	"github.com/obstack/obtools/pkg/metricskey"

	// MySQL wire protocol driver, used for both OceanBase and SeekDB.
	_ "github.com/go-sql-driver/mysql"
)

var logger = xlog.NewPackageLogger("github.com/obstack/obtools", "obdb")

// Client is a read-only OceanBase client. Every statement passes the
// read-only guard before it reaches the server.
type Client struct {
	db  *sqlx.DB
	cfg *Config
}

// New opens a connection pool to the configured server. The pool itself is
// managed by database/sql; opts only tunes its limits.
func New(cfg *Config, opts *Options) (*Client, error) {
	if !cfg.IsValid() {
		return nil, errors.Errorf("invalid OceanBase config: hostname, port and username are required")
	}

	db, err := sqlx.Open("mysql", cfg.DSN(opts))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open connection")
	}
	if opts != nil {
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(opts.ConnMaxLifetime.Duration())
		}
	}
	return &Client{db: db, cfg: cfg}, nil
}

// NewFromDB wraps an existing handle. Used by tests.
func NewFromDB(db *sqlx.DB, cfg *Config) *Client {
	return &Client{db: db, cfg: cfg}
}

// Config returns the connection config the client was created with.
func (c *Client) Config() *Config {
	return c.cfg
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Query executes a read-only statement and materializes the result set.
func (c *Client) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	if err := EnsureReadOnly(query); err != nil {
		return nil, err
	}

	logger.ContextKV(ctx, xlog.DEBUG, "db", c.cfg.DBName, "query", query)
	defer metricskey.PerfDBQuery.MeasureSince(time.Now(), c.cfg.DBName)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		metricskey.StatsDBQueriesFailed.IncrCounter(1, c.cfg.DBName)
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer func() {
		_ = rows.Close()
	}()

	rs, err := ReadRows(rows)
	if err != nil {
		metricskey.StatsDBQueriesFailed.IncrCounter(1, c.cfg.DBName)
		return nil, err
	}
	metricskey.StatsDBQueriesSucceeded.IncrCounter(1, c.cfg.DBName)
	metricskey.StatsDBRowsReturned.IncrCounter(float64(rs.Count()), c.cfg.DBName)
	return rs, nil
}

// QueryValue executes a read-only statement expected to return a single
// scalar, such as SELECT DBMS_HYBRID_SEARCH.SEARCH(...).
func (c *Client) QueryValue(ctx context.Context, query string, args ...any) (string, error) {
	if err := EnsureReadOnly(query); err != nil {
		return "", err
	}

	var value string
	err := c.db.QueryRowxContext(ctx, query, args...).Scan(&value)
	if err != nil {
		return "", errors.Wrap(err, "failed to execute query")
	}
	return value, nil
}
