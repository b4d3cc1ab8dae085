package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pricedex/pricedex"
	"github.com/pricedex/pricedex/infrastructure/api"
	"github.com/pricedex/pricedex/infrastructure/provider"
)

// stubEmbedder returns a fixed vector for every text.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, req provider.EmbeddingRequest) (provider.EmbeddingResponse, error) {
	vectors := make([][]float64, len(req.Texts()))
	for i := range vectors {
		vectors[i] = []float64{1, 0, 0}
	}
	return provider.NewEmbeddingResponse(vectors, provider.Usage{}), nil
}

func newTestClient(t *testing.T) *pricedex.Client {
	t.Helper()
	tmpDir := t.TempDir()
	client, err := pricedex.New(
		pricedex.WithSQLite(filepath.Join(tmpDir, "test.db")),
		pricedex.WithDataDir(tmpDir),
		pricedex.WithEmbeddingProvider(stubEmbedder{}),
	)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAPIServer_ReadEndpointsOpen_WriteEndpointsProtected(t *testing.T) {
	client := newTestClient(t)
	apiKeys := []string{"test-secret-key"}
	apiServer := api.NewAPIServer(client, apiKeys)
	router := apiServer.Router()

	apiServer.MountRoutes()

	docsRouter := apiServer.DocsRouter("/docs/openapi.json")
	router.Mount("/docs", docsRouter.Routes())

	handler := router

	t.Run("GET /docs returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("POST /api/v1/search without key returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"data":{"type":"search","attributes":{"query":"test"}}}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
		}
	})

	t.Run("GET /api/v1/keepalive without key returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/keepalive", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
		}
	})

	t.Run("POST /api/v1/products without key returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"data":{"type":"product","attributes":{"name":"x","hsn_code":"1","country":"y","prices":{"2023":1}}}}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusUnauthorized, w.Body.String())
		}
	})

	t.Run("POST /api/v1/products with valid key passes auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"data":{"type":"product","attributes":{"name":"Ceramic tiles","hsn_code":"690100","country":"japan","prices":{"2023":12.5}}}}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-KEY", "test-secret-key")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
		}
	})

	t.Run("DELETE /api/v1/products/unpriced without key returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/unpriced", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusUnauthorized, w.Body.String())
		}
	})

	t.Run("GET /api/v1/products without key returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
		}
	})
}

func TestAPIServer_NoKeysConfigured_WritesOpen(t *testing.T) {
	client := newTestClient(t)
	apiServer := api.NewAPIServer(client, nil)
	apiServer.MountRoutes()
	handler := apiServer.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"data":{"type":"product","attributes":{"name":"Ceramic tiles","hsn_code":"690100","country":"japan","prices":{"2023":12.5}}}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}
