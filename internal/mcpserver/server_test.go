package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/obstack/obtools/pkg/llmfactory"
	"github.com/obstack/obtools/pkg/llms"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/obstack/obtools/tools/executesql"
	"github.com/obstack/obtools/tools/hybridsearch"
	"github.com/obstack/obtools/tools/tableschema"
	"github.com/obstack/obtools/tools/text2sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFactory struct{}

func (f *fakeFactory) DefaultModel() (llms.Model, error) { return nil, nil }
func (f *fakeFactory) ModelByType(providerType string) (llms.Model, error) {
	return nil, nil
}
func (f *fakeFactory) ModelByName(preferredModels ...string) (llms.Model, error) {
	return nil, nil
}
func (f *fakeFactory) ToolModel(toolName string, preferredModels ...string) (llms.Model, error) {
	return nil, nil
}
func (f *fakeFactory) Embedder() (llms.Embedder, error) { return nil, nil }
func (f *fakeFactory) Reranker() (llms.Reranker, error) { return nil, nil }

var _ llmfactory.Factory = (*fakeFactory)(nil)

func testConfig() Config {
	return Config{
		DB: &obdb.Config{
			Hostname: "127.0.0.1",
			Port:     1,
			DBName:   "test",
			Username: "root",
			Password: "secret",
		},
		LLM:        &fakeFactory{},
		Version:    "test",
		ListenAddr: "127.0.0.1:0",
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := testConfig()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, defaultReadHeaderTimeout, cfg.ReadHeaderTimeout)
		assert.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
	})

	t.Run("missing db", func(t *testing.T) {
		cfg := testConfig()
		cfg.DB = nil
		assert.EqualError(t, cfg.Validate(), "database configuration is required")
	})

	t.Run("missing llm", func(t *testing.T) {
		cfg := testConfig()
		cfg.LLM = nil
		assert.EqualError(t, cfg.Validate(), "LLM factory is required")
	})

	t.Run("missing addr", func(t *testing.T) {
		cfg := testConfig()
		cfg.ListenAddr = ""
		assert.EqualError(t, cfg.Validate(), "listen address is required")
	})

	t.Run("keeps timeouts", func(t *testing.T) {
		cfg := testConfig()
		cfg.ReadHeaderTimeout = time.Second
		cfg.ShutdownTimeout = 2 * time.Second
		require.NoError(t, cfg.Validate())
		assert.Equal(t, time.Second, cfg.ReadHeaderTimeout)
		assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	})
}

func TestNew(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)
	require.NotNil(t, s.mcp)
	require.NotNil(t, s.http)
}

func TestListTools(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := s.mcp.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() {
		_ = serverSession.Close()
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() {
		_ = clientSession.Close()
	}()

	res, err := clientSession.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		require.NotNil(t, tool.InputSchema, "tool %s", tool.Name)
		require.NotNil(t, tool.OutputSchema, "tool %s", tool.Name)
	}
	assert.ElementsMatch(t, []string{
		executesql.ToolName,
		tableschema.ToolName,
		text2sql.ToolName,
		hybridsearch.ToolName,
	}, names)
}

func TestHealthz(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok\n", rr.Body.String())
}

func TestReadyzUnreachable(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()
	s.readyzHandler(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "database not ready\n", rr.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedTokens = []string{"sekrit"}
	s, err := New(cfg)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := s.authMiddleware(next)

	tcases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic sekrit", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer sekrit", http.StatusOK},
		{"case insensitive scheme", "bearer sekrit", http.StatusOK},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}
