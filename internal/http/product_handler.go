package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Katyxel/add-basket/internal/domain"
)

type ProductGrid interface {
	Cards() []domain.Product
	Load(ctx context.Context) error
}

type ProductForm interface {
	Submit(ctx context.Context, fields map[string]string) (domain.Product, error)
}

type ProductHandler struct {
	grid    ProductGrid
	form    ProductForm
	timeout time.Duration
}

func NewProductHandler(grid ProductGrid, form ProductForm, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		grid:    grid,
		form:    form,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cards := h.grid.Cards()
	if len(cards) == 0 || r.URL.Query().Get("refresh") == "true" {
		err := h.grid.Load(ctx)
		cards = h.grid.Cards()
		if err != nil && len(cards) == 0 {
			respondError(w, http.StatusBadGateway, "catalog_unavailable", "catalog could not be loaded")
			return
		}
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: cards})
}

// Create accepts the product form as a flat JSON object of field values.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	fields, err := decodeFormFields(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if fields["name"] == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return
	}

	p, err := h.form.Submit(ctx, fields)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_rejected", "catalog did not accept the product")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func decodeFormFields(r *http.Request) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for name, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			fields[name] = s
			continue
		}
		// numbers and booleans keep their literal text, like an input's value
		fields[name] = string(bytes.TrimSpace(value))
	}
	return fields, nil
}
