package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Katyxel/add-basket/internal/catalog/repository"
	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogHandler serves the catalog contract the storefront consumes:
// GET /products and POST /products.
type CatalogHandler struct {
	repo   repository.RepoInterface
	logger *zap.Logger
}

func NewCatalogHandler(repo repository.RepoInterface, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{repo: repo, logger: logger}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.GetAllProducts(r.Context())
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if p.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	err := h.repo.CreateProduct(r.Context(), p)
	if errors.Is(err, repository.ErrProductExists) {
		respondError(w, http.StatusConflict, "already_exists", "product id already exists")
		return
	}
	if err != nil {
		h.logger.Error("create product failed", zap.String("product_id", p.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create product")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}
