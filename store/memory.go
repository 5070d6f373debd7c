package store

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/obstack/obtools/pkg/obdb"
)

type memEntry struct {
	value   any
	expires time.Time
}

type inMemory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	storage map[string]memEntry
}

// NewMemoryStore creates a process-local schema cache. A non-positive ttl
// falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) SchemaStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &inMemory{ttl: ttl}
}

func (m *inMemory) get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ent, ok := m.storage[key]
	if !ok || time.Now().After(ent.expires) {
		return nil, false
	}
	return ent.value, true
}

func (m *inMemory) set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string]memEntry)
	}
	m.storage[key] = memEntry{value: value, expires: time.Now().Add(m.ttl)}
}

func memInfoKey(conn, table string) string {
	return path.Join(connHash(conn), "info", table)
}

func memSearchKey(conn, table string) string {
	return path.Join(connHash(conn), "search", table)
}

func (m *inMemory) GetTableInfo(_ context.Context, conn, table string) (*obdb.TableInfo, bool) {
	v, ok := m.get(memInfoKey(conn, table))
	if !ok {
		return nil, false
	}
	info, ok := v.(*obdb.TableInfo)
	return info, ok
}

func (m *inMemory) SetTableInfo(_ context.Context, conn, table string, info *obdb.TableInfo) error {
	m.set(memInfoKey(conn, table), info)
	return nil
}

func (m *inMemory) GetSearchColumns(_ context.Context, conn, table string) (*obdb.SearchColumns, bool) {
	v, ok := m.get(memSearchKey(conn, table))
	if !ok {
		return nil, false
	}
	sc, ok := v.(*obdb.SearchColumns)
	return sc, ok
}

func (m *inMemory) SetSearchColumns(_ context.Context, conn, table string, sc *obdb.SearchColumns) error {
	m.set(memSearchKey(conn, table), sc)
	return nil
}

func (m *inMemory) Invalidate(_ context.Context, conn string) error {
	prefix := connHash(conn) + "/"
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.storage {
		if strings.HasPrefix(key, prefix) {
			delete(m.storage, key)
		}
	}
	return nil
}
