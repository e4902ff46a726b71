package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-konveksi/internal/catalog"
	"github.com/noah-isme/backend-konveksi/internal/common"
	"github.com/noah-isme/backend-konveksi/internal/pricing"
)

// Handler exposes checkout, manual entry, and order detail over HTTP.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

type checkoutPayload struct {
	PaymentType  string  `json:"paymentType" validate:"required,oneof=full dp"`
	DPPercentage float64 `json:"dpPercentage" validate:"gte=0,lte=100"`
	Notes        string  `json:"notes"`
}

type manualDesignPayload struct {
	IsCustom  bool   `json:"isCustom"`
	DesignURL string `json:"designUrl" validate:"omitempty,url"`
	Notes     string `json:"notes"`
}

type manualPayload struct {
	CustomerName  string                  `json:"customerName" validate:"required"`
	CustomerPhone string                  `json:"customerPhone"`
	ProductID     string                  `json:"productId" validate:"required"`
	Material      string                  `json:"material" validate:"required"`
	SizeBreakdown []catalog.SizeSelection `json:"sizeBreakdown" validate:"required,min=1,dive"`
	CustomDesign  *manualDesignPayload    `json:"customDesign"`
	PaymentType   string                  `json:"paymentType" validate:"required,oneof=full dp"`
	DPPercentage  float64                 `json:"dpPercentage" validate:"gte=0,lte=100"`
	Notes         string                  `json:"notes"`
}

// Routes mounts the order endpoints on a router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Checkout)
	r.Post("/manual", h.Manual)
	r.Get("/{orderID}", h.Detail)
}

// Checkout submits the caller's cart as an order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var payload checkoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid checkout payload", common.ValidationDetails(err))
		return
	}

	placed, err := h.Service.Checkout(r.Context(), userID, CheckoutInput{
		PaymentType:  payload.PaymentType,
		DPPercentage: payload.DPPercentage,
		Notes:        payload.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": placed})
}

// Manual records an offline order. Restricted to staff tokens.
func (h *Handler) Manual(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	if role, _ := common.Role(r.Context()); role != "staff" && role != "admin" {
		common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "staff access required", nil)
		return
	}
	var payload manualPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid manual order payload", common.ValidationDetails(err))
		return
	}

	in := ManualInput{
		CustomerName:  payload.CustomerName,
		CustomerPhone: payload.CustomerPhone,
		ProductID:     payload.ProductID,
		Material:      payload.Material,
		SizeBreakdown: payload.SizeBreakdown,
		PaymentType:   payload.PaymentType,
		DPPercentage:  payload.DPPercentage,
		Notes:         payload.Notes,
	}
	if payload.CustomDesign != nil {
		in.CustomDesign = &pricing.CustomDesign{
			IsCustom:  payload.CustomDesign.IsCustom,
			DesignURL: payload.CustomDesign.DesignURL,
			Notes:     payload.CustomDesign.Notes,
		}
	}

	placed, err := h.Service.Manual(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": placed})
}

// Detail returns a stored order without recomputing any prices.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.UserID(r.Context()); !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	placed, err := h.Service.Detail(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": placed})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusConflict, "CART_EMPTY", "cart has no items to submit", nil)
	case errors.Is(err, ErrPaymentInvalid):
		common.JSONError(w, http.StatusUnprocessableEntity, "PAYMENT_INVALID", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
	case errors.Is(err, ErrRejected):
		common.JSONError(w, http.StatusBadGateway, "BACKEND_REJECTED", "backend rejected the order submission", nil)
	case errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
	case errors.Is(err, catalog.ErrOptionUnavailable):
		common.JSONError(w, http.StatusUnprocessableEntity, "OPTION_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, pricing.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process order", nil)
	}
}
