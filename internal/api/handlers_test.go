package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erdgraph/internal/db"
	"erdgraph/internal/diagram"
	"erdgraph/internal/expr"
	"erdgraph/internal/metadata"
	"erdgraph/internal/store"
	"erdgraph/pkg/config"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func shopPayload(t *testing.T) json.RawMessage {
	t.Helper()
	data, err := os.ReadFile("../metadata/testdata/shop.json")
	require.NoError(t, err)
	return data
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := NewServer(store.NewMemoryStore(), time.Second, opts...)
	return s, s.Router("")
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestCheck(t *testing.T) {
	_, r := newTestServer(t)

	code, env := do(t, r, http.MethodPost, "/api/check", checkRequest{Expression: "price > 10 AND qty < 3"})
	require.Equal(t, http.StatusOK, code)
	var res expr.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Valid)

	code, env = do(t, r, http.MethodPost, "/api/check", checkRequest{Expression: "a b"})
	require.Equal(t, http.StatusOK, code)
	res = expr.Result{}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.False(t, res.Valid)
	assert.Equal(t, "unexpected identifier 'b'", res.Error)
	require.NotNil(t, res.Position)
	assert.Equal(t, 2, *res.Position)
}

func TestCheckBadJSON(t *testing.T) {
	_, r := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/check", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilter(t *testing.T) {
	_, r := newTestServer(t)

	code, env := do(t, r, http.MethodPost, "/api/metadata/filter", map[string]any{
		"metadata":  shopPayload(t),
		"selection": []metadata.TableSelector{{Schema: "public", Table: "orders", Type: metadata.TableObject}},
	})
	require.Equal(t, http.StatusOK, code, env.Error)

	var m metadata.DatabaseMetadata
	require.NoError(t, json.Unmarshal(env.Data, &m))
	require.Len(t, m.Tables, 1)
	assert.Equal(t, "orders", m.Tables[0].Table)
	assert.Empty(t, m.Views)
	for _, c := range m.Columns {
		assert.Equal(t, "orders", c.Table)
	}
}

func TestImportRejectsMalformedMetadata(t *testing.T) {
	_, r := newTestServer(t)

	code, env := do(t, r, http.MethodPost, "/api/import", map[string]any{
		"metadata": map[string]any{"tables": []any{}},
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)

	var details struct {
		Issues []string `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &details))
	assert.NotEmpty(t, details.Issues)
}

func TestImportStoresDiagram(t *testing.T) {
	_, r := newTestServer(t)

	code, env := do(t, r, http.MethodPost, "/api/import", ImportRequest{
		Metadata:     shopPayload(t),
		DatabaseType: "postgresql",
		Name:         "shop",
	})
	require.Equal(t, http.StatusOK, code, env.Error)

	var res ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "shop", res.Diagram.Name)
	assert.Equal(t, diagram.PostgreSQL, res.Diagram.DatabaseType)
	assert.NotEmpty(t, res.Diagram.Tables)

	code, env = do(t, r, http.MethodGet, "/api/diagrams/"+res.Diagram.ID, nil)
	require.Equal(t, http.StatusOK, code)
	var stored diagram.Diagram
	require.NoError(t, json.Unmarshal(env.Data, &stored))
	assert.Equal(t, res.Diagram.ID, stored.ID)
	assert.Len(t, stored.Tables, len(res.Diagram.Tables))
}

func TestReimportKeepsIdentities(t *testing.T) {
	_, r := newTestServer(t)

	_, env := do(t, r, http.MethodPost, "/api/import", ImportRequest{
		Metadata:     shopPayload(t),
		DatabaseType: "postgresql",
		Name:         "shop",
	})
	var first ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &first))

	code, env := do(t, r, http.MethodPost, "/api/import", ImportRequest{
		Metadata:  shopPayload(t),
		DiagramID: first.Diagram.ID,
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var second ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &second))

	assert.Equal(t, first.Diagram.ID, second.Diagram.ID)
	assert.Equal(t, "shop", second.Diagram.Name)
	assert.Equal(t, diagram.PostgreSQL, second.Diagram.DatabaseType)
	require.Len(t, second.Diagram.Tables, len(first.Diagram.Tables))
	for i, table := range first.Diagram.Tables {
		assert.Equal(t, table.ID, second.Diagram.Tables[i].ID, table.Name)
		for j, f := range table.Fields {
			assert.Equal(t, f.ID, second.Diagram.Tables[i].Fields[j].ID, table.Name+"."+f.Name)
		}
	}
	require.Len(t, second.Diagram.Relationships, len(first.Diagram.Relationships))
	for i, rel := range first.Diagram.Relationships {
		assert.Equal(t, rel.ID, second.Diagram.Relationships[i].ID, rel.Name)
	}
}

func TestReimportKeepsPresentation(t *testing.T) {
	s, r := newTestServer(t)
	ctx := context.Background()

	_, env := do(t, r, http.MethodPost, "/api/import", ImportRequest{
		Metadata:     shopPayload(t),
		DatabaseType: "postgresql",
	})
	var first ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &first))

	edited, err := s.store.Get(ctx, first.Diagram.ID)
	require.NoError(t, err)
	note := "moved by hand"
	customers := &edited.Tables[0]
	require.Equal(t, "customers", customers.Name)
	customers.Color = "#ff0000"
	customers.X, customers.Y = 9999, 7777
	customers.Comments = &note
	require.NoError(t, s.store.Put(ctx, edited))

	code, env := do(t, r, http.MethodPost, "/api/import", ImportRequest{
		Metadata:  shopPayload(t),
		DiagramID: first.Diagram.ID,
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var second ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &second))

	got := second.Diagram.Tables[0]
	assert.Equal(t, customers.ID, got.ID)
	assert.Equal(t, "#ff0000", got.Color)
	assert.Equal(t, 9999.0, got.X)
	assert.Equal(t, 7777.0, got.Y)
	require.NotNil(t, got.Comments)
	assert.Equal(t, "moved by hand", *got.Comments)

	for i, table := range first.Diagram.Tables[1:] {
		assert.Equal(t, table.Color, second.Diagram.Tables[i+1].Color, table.Name)
		assert.Equal(t, table.X, second.Diagram.Tables[i+1].X, table.Name)
	}

	stored, err := s.store.Get(ctx, first.Diagram.ID)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", stored.Tables[0].Color)
}

func TestImportUnknownDiagramBuildsNew(t *testing.T) {
	_, r := newTestServer(t)

	code, env := do(t, r, http.MethodPost, "/api/import", ImportRequest{
		Metadata:  shopPayload(t),
		DiagramID: "nope",
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var res ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEqual(t, "nope", res.Diagram.ID)
}

func TestReconcileEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	build := func() diagram.Diagram {
		res, err := Import(ImportRequest{Metadata: shopPayload(t), DatabaseType: "postgresql"}, nil, nil)
		require.NoError(t, err)
		return res.Diagram
	}
	source, target := build(), build()
	require.NotEqual(t, source.Tables[0].ID, target.Tables[0].ID)

	code, env := do(t, r, http.MethodPost, "/api/reconcile", reconcileRequest{Source: source, Target: target})
	require.Equal(t, http.StatusOK, code, env.Error)
	var got diagram.Diagram
	require.NoError(t, json.Unmarshal(env.Data, &got))

	assert.Equal(t, target.ID, got.ID)
	for i := range source.Tables {
		assert.Equal(t, source.Tables[i].ID, got.Tables[i].ID)
	}
}

func TestGetDiagramNotFound(t *testing.T) {
	_, r := newTestServer(t)

	code, env := do(t, r, http.MethodGet, "/api/diagrams/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", env.Status)
}

func TestConnectAndSchema(t *testing.T) {
	var calls []string
	fake := func(_ context.Context, driver, dsn string, _ time.Duration) (metadata.DatabaseMetadata, error) {
		calls = append(calls, driver+" "+dsn)
		return metadata.Parse(shopPayload(t))
	}
	s, r := newTestServer(t, WithExtractor(fake))

	code, _ := do(t, r, http.MethodGet, "/api/schema", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, env := do(t, r, http.MethodPost, "/api/connect", config.DBConfig{Type: "postgres", DSN: "postgres://shop"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var res ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, diagram.PostgreSQL, res.Diagram.DatabaseType)
	assert.NotEmpty(t, res.Diagram.Tables)

	_, driver, dsn := s.active()
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "postgres://shop", dsn)

	code, env = do(t, r, http.MethodGet, "/api/schema", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var m metadata.DatabaseMetadata
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, "shop", m.DatabaseName)

	assert.Equal(t, []string{"postgres postgres://shop", "postgres postgres://shop"}, calls)

	code, env = do(t, r, http.MethodGet, "/api/getConnect", nil)
	require.Equal(t, http.StatusOK, code)
	var cfg config.DBConfig
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, "postgres", cfg.Type)
}

func TestConnectFailure(t *testing.T) {
	fake := func(context.Context, string, string, time.Duration) (metadata.DatabaseMetadata, error) {
		return metadata.DatabaseMetadata{}, errors.New("refused")
	}
	s, r := newTestServer(t, WithExtractor(fake))

	code, env := do(t, r, http.MethodPost, "/api/connect", config.DBConfig{Type: "mysql", DSN: "u@/x"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "refused", env.Error)

	_, driver, _ := s.active()
	assert.Empty(t, driver)
}

func TestConnectUsesRegisteredExtractors(t *testing.T) {
	s, _ := newTestServer(t)
	require.NotNil(t, s.extract)
	_, err := s.extract(context.Background(), "no-such-driver", "x", time.Second)
	assert.Error(t, err)
	assert.NotContains(t, db.RegisteredDialects(), "no-such-driver")
}
