package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/Katyxel/add-basket/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProducts_LoadsOnFirstRequest(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	rec := s.do(t, http.MethodGet, "/api/v1/products", "s1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProductsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "p1", resp.Products[0].ID)
	assert.Equal(t, 1, s.grid.loads)

	s.do(t, http.MethodGet, "/api/v1/products", "s1", nil)
	assert.Equal(t, 1, s.grid.loads, "cached grid should not reload")

	s.do(t, http.MethodGet, "/api/v1/products?refresh=true", "s1", nil)
	assert.Equal(t, 2, s.grid.loads)
}

func TestGetProducts_CatalogDown(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)
	s.grid.err = errors.New("connection refused")

	rec := s.do(t, http.MethodGet, "/api/v1/products", "s1", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCreateProduct_Success(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	rec := s.do(t, http.MethodPost, "/api/v1/products", "s1", map[string]any{
		"name":     "Sofa",
		"price":    499,
		"category": "Furniture",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Sofa", s.form.fields["name"])
	assert.Equal(t, "499", s.form.fields["price"])

	var p domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "new-id", p.ID)
}

func TestCreateProduct_Validation(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)

	rec := s.do(t, http.MethodPost, "/api/v1/products", "s1", map[string]any{"price": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString("not json"))
	bad := httptest.NewRecorder()
	s.handler.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestCreateProduct_CatalogRejects(t *testing.T) {
	s := newTestServer(t, service.DuplicateSeparate)
	s.form.err = errors.New("unexpected status 500")

	rec := s.do(t, http.MethodPost, "/api/v1/products", "s1", map[string]any{"name": "Sofa"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "catalog_rejected", resp.Code)
}
