package mcpserver

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/pkg/llmfactory"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/obstack/obtools/store"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 5 * time.Second
)

// Config describes the MCP server.
type Config struct {
	// DB is the default database connection.
	// Tool calls may still override it with per-request connect options.
	DB *obdb.Config

	// LLM provides chat models, embedders and rerankers for the
	// Text2SQL and HybridSearch tools.
	LLM llmfactory.Factory

	// Cache is an optional schema cache shared by the tools.
	Cache store.SchemaStore

	Version           string
	ListenAddr        string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	// AllowedTokens lists bearer tokens accepted on the MCP endpoint.
	// Empty means no authentication.
	AllowedTokens []string
}

func (c *Config) Validate() error {
	if c.DB == nil || !c.DB.IsValid() {
		return errors.New("database configuration is required")
	}
	if c.LLM == nil {
		return errors.New("LLM factory is required")
	}
	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	return nil
}
