package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-konveksi/internal/catalog"
	"github.com/noah-isme/backend-konveksi/internal/common"
	"github.com/noah-isme/backend-konveksi/internal/pricing"
)

// Handler wires the cart store to HTTP.
type Handler struct {
	Store    *Store
	Catalog  *catalog.Service
	Validate *validator.Validate
}

type customDesignPayload struct {
	IsCustom  bool   `json:"isCustom"`
	DesignURL string `json:"designUrl" validate:"omitempty,url"`
	Notes     string `json:"notes"`
}

type addItemPayload struct {
	ProductID     string                  `json:"productId" validate:"required"`
	Material      string                  `json:"material" validate:"required"`
	SizeBreakdown []catalog.SizeSelection `json:"sizeBreakdown" validate:"required,min=1,dive"`
	CustomDesign  *customDesignPayload    `json:"customDesign"`
}

type updateItemPayload struct {
	Material      *string                 `json:"material"`
	SizeBreakdown []catalog.SizeSelection `json:"sizeBreakdown"`
	CustomDesign  *customDesignPayload    `json:"customDesign"`
}

// Routes mounts the cart endpoints on a router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Patch("/items/{lineID}", h.UpdateItem)
	r.Delete("/items/{lineID}", h.RemoveItem)
}

// Get returns the caller's cart snapshot.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	st, err := h.Store.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": st})
}

// AddItem resolves the product snapshot and adds a configured line to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid cart item payload", common.ValidationDetails(err))
		return
	}

	in, err := h.resolveInput(r, payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	st, err := h.Store.Add(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": st})
}

// UpdateItem merges partial changes into an existing cart line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	lineID := chi.URLParam(r, "lineID")
	var payload updateItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}

	st, err := h.Store.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var line *Line
	for i := range st.Items {
		if st.Items[i].ID == lineID {
			line = &st.Items[i]
			break
		}
	}
	if line == nil {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart line not found", nil)
		return
	}

	snapshot, err := h.Catalog.Product(r.Context(), line.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	upd := Update{}
	if payload.SizeBreakdown != nil {
		rows, err := snapshot.ResolveSizes(payload.SizeBreakdown)
		if err != nil {
			h.writeError(w, err)
			return
		}
		upd.SizeBreakdown = rows
	}
	if payload.Material != nil {
		mat, err := snapshot.ResolveMaterial(strings.TrimSpace(*payload.Material))
		if err != nil {
			h.writeError(w, err)
			return
		}
		upd.Material = mat
	}
	if payload.CustomDesign != nil {
		upd.CustomDesign = resolveDesign(snapshot, payload.CustomDesign)
	}

	newState, err := h.Store.UpdateItem(r.Context(), userID, lineID, upd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": newState})
}

// RemoveItem deletes one line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	st, err := h.Store.Remove(r.Context(), userID, chi.URLParam(r, "lineID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": st})
}

// Clear resets the caller's cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	st, err := h.Store.Clear(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": st})
}

// resolveInput turns an add payload into a fully priced AddInput, taking
// every surcharge from the catalog snapshot rather than the client.
func (h *Handler) resolveInput(r *http.Request, payload addItemPayload) (AddInput, error) {
	snapshot, err := h.Catalog.Product(r.Context(), payload.ProductID)
	if err != nil {
		return AddInput{}, err
	}
	rows, err := snapshot.ResolveSizes(payload.SizeBreakdown)
	if err != nil {
		return AddInput{}, err
	}
	material, err := snapshot.ResolveMaterial(strings.TrimSpace(payload.Material))
	if err != nil {
		return AddInput{}, err
	}
	return AddInput{
		ProductID:     snapshot.ID,
		ProductName:   snapshot.Name,
		Product:       snapshot.Pricing(),
		Material:      material,
		CustomDesign:  resolveDesign(snapshot, payload.CustomDesign),
		SizeBreakdown: rows,
	}, nil
}

func resolveDesign(snapshot catalog.ProductSnapshot, payload *customDesignPayload) *pricing.CustomDesign {
	if payload == nil {
		return nil
	}
	design := &pricing.CustomDesign{
		IsCustom:  payload.IsCustom,
		DesignURL: payload.DesignURL,
		Notes:     payload.Notes,
	}
	if design.IsCustom {
		design.CustomizationFee = snapshot.CustomizationFee
	}
	return design
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
	case errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
	case errors.Is(err, catalog.ErrOptionUnavailable):
		common.JSONError(w, http.StatusUnprocessableEntity, "OPTION_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart line not found", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pricing.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process cart operation", nil)
	}
}
