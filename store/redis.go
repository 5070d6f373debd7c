package store

import (
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/redis/go-redis/v9"
)

// The redis store implements the SchemaStore interface using Redis as the
// backend, so several instances of the plugin can share one schema cache.
// The keys namespace is organized as follows:
// - `/<prefix>/schemacache/<connHash>/info/<table>` for table introspection
// - `/<prefix>/schemacache/<connHash>/search/<table>` for search columns
// where connHash is a hash of the connection identity, never the raw DSN.

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed schema cache. A non-positive ttl
// falls back to DefaultTTL.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) SchemaStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (m *redisStore) getInfoKey(conn, table string) string {
	return path.Join(m.prefix, "schemacache", connHash(conn), "info", table)
}

func (m *redisStore) getSearchKey(conn, table string) string {
	return path.Join(m.prefix, "schemacache", connHash(conn), "search", table)
}

func (m *redisStore) get(ctx context.Context, key string, out any) bool {
	data, err := m.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "redis get", "key", key, "err", err.Error())
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "reason", "unmarshal cached schema", "key", key, "err", err.Error())
		return false
	}
	return true
}

func (m *redisStore) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal schema entry")
	}
	err = m.client.Set(ctx, key, data, m.ttl).Err()
	if err != nil {
		return errors.Wrap(err, "failed to store schema entry in Redis")
	}
	return nil
}

func (m *redisStore) GetTableInfo(ctx context.Context, conn, table string) (*obdb.TableInfo, bool) {
	var info obdb.TableInfo
	if !m.get(ctx, m.getInfoKey(conn, table), &info) {
		return nil, false
	}
	return &info, true
}

func (m *redisStore) SetTableInfo(ctx context.Context, conn, table string, info *obdb.TableInfo) error {
	return m.set(ctx, m.getInfoKey(conn, table), info)
}

func (m *redisStore) GetSearchColumns(ctx context.Context, conn, table string) (*obdb.SearchColumns, bool) {
	var sc obdb.SearchColumns
	if !m.get(ctx, m.getSearchKey(conn, table), &sc) {
		return nil, false
	}
	return &sc, true
}

func (m *redisStore) SetSearchColumns(ctx context.Context, conn, table string, sc *obdb.SearchColumns) error {
	return m.set(ctx, m.getSearchKey(conn, table), sc)
}

func (m *redisStore) Invalidate(ctx context.Context, conn string) error {
	pattern := path.Join(m.prefix, "schemacache", connHash(conn)) + "/*"
	// Use SCAN instead of KEYS for better performance
	iter := m.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "failed to scan schema cache keys from Redis")
	}
	if len(keys) == 0 {
		return nil
	}
	if err := m.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "failed to delete schema cache keys from Redis")
	}
	return nil
}
