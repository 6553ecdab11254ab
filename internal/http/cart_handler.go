package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Katyxel/add-basket/internal/basket"
	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/Katyxel/add-basket/internal/service"
	"github.com/Katyxel/add-basket/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartSessions interface {
	Get(ctx context.Context, sessionID string) (*service.CartService, error)
}

type ProductLookup interface {
	Lookup(id string) (domain.Product, bool)
	Load(ctx context.Context) error
}

type CartHandler struct {
	sessions CartSessions
	products ProductLookup
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCartHandler(sessions CartSessions, products ProductLookup, timeout time.Duration, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		sessions: sessions,
		products: products,
		timeout:  timeout,
		logger:   logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, ok := h.cart(ctx, w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, cart.State())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, found := h.products.Lookup(req.ProductID)
	if !found {
		// the card may belong to a catalog newer than the grid we hold
		if err := h.products.Load(ctx); err == nil {
			product, found = h.products.Lookup(req.ProductID)
		}
	}
	if !found {
		respondError(w, http.StatusNotFound, "product_not_found", "product is not in the catalog")
		return
	}

	cart, ok := h.cart(ctx, w)
	if !ok {
		return
	}
	if err := cart.AddToCart(ctx, product); err != nil {
		h.handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cart.State())
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.rowAction(w, r, (*service.CartService).Increment)
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.rowAction(w, r, (*service.CartService).Decrement)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.rowAction(w, r, (*service.CartService).Delete)
}

func (h *CartHandler) rowAction(w http.ResponseWriter, r *http.Request,
	action func(*service.CartService, context.Context, string) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	rowID := chi.URLParam(r, "row_id")
	if rowID == "" {
		respondError(w, http.StatusBadRequest, "invalid_row_id", "row_id is required")
		return
	}

	cart, ok := h.cart(ctx, w)
	if !ok {
		return
	}
	if err := action(cart, ctx, rowID); err != nil {
		h.handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart.State())
}

func (h *CartHandler) cart(ctx context.Context, w http.ResponseWriter) (*service.CartService, bool) {
	id := session.ID(ctx)
	if id == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing session")
		return nil, false
	}

	cart, err := h.sessions.Get(ctx, id)
	if err != nil {
		h.logger.Error("load cart failed", zap.String("session_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return nil, false
	}
	return cart, true
}

func (h *CartHandler) handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRowNotFound):
		respondError(w, http.StatusNotFound, "row_not_found", err.Error())
	case errors.Is(err, basket.ErrControlDisabled):
		respondError(w, http.StatusConflict, "control_disabled", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "cart operation timed out")
	default:
		h.logger.Error("cart operation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "cart operation failed")
	}
}
