package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewStorefrontRouter wires the page-facing API.
func NewStorefrontRouter(products *ProductHandler, cart *CartHandler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.Get)
			r.Post("/", products.Create)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Post("/items", cart.AddItem)
			r.Post("/items/{row_id}/increment", cart.Increment)
			r.Post("/items/{row_id}/decrement", cart.Decrement)
			r.Delete("/items/{row_id}", cart.RemoveItem)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

// NewCatalogRouter wires the catalog service API.
func NewCatalogRouter(catalog *CatalogHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", health)
	r.Get("/products", catalog.List)
	r.Post("/products", catalog.Create)

	return otelhttp.NewHandler(r, "catalog")
}
