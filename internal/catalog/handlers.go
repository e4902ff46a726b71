package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-konveksi/internal/common"
)

// Handler exposes read-only catalog snapshots over HTTP.
type Handler struct {
	Service *Service
}

// Routes mounts the catalog endpoints on a router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/products/{productID}", h.Product)
}

// Product returns the pricing snapshot the calculators work from.
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Service.Product(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "catalog backend unavailable", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snapshot})
}
