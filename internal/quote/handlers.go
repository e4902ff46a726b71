package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-konveksi/internal/catalog"
	"github.com/noah-isme/backend-konveksi/internal/common"
	"github.com/noah-isme/backend-konveksi/internal/obs"
	"github.com/noah-isme/backend-konveksi/internal/pricing"
)

// Handler computes price previews without touching any cart. Product
// pages and the manual order form call this before anything is stored,
// so the number shown is the number every later surface will show.
type Handler struct {
	Catalog  *catalog.Service
	Validate *validator.Validate
}

type designPayload struct {
	IsCustom  bool   `json:"isCustom"`
	DesignURL string `json:"designUrl" validate:"omitempty,url"`
	Notes     string `json:"notes"`
}

type quotePayload struct {
	ProductID     string                  `json:"productId" validate:"required"`
	Material      string                  `json:"material" validate:"required"`
	SizeBreakdown []catalog.SizeSelection `json:"sizeBreakdown" validate:"required,min=1,dive"`
	CustomDesign  *designPayload          `json:"customDesign"`
	DPPercentage  *float64                `json:"dpPercentage" validate:"omitempty,gte=0,lte=100"`
}

type quoteResponse struct {
	PriceDetails pricing.Breakdown     `json:"priceDetails"`
	Deposit      *pricing.DepositSplit `json:"deposit,omitempty"`
}

// Routes mounts the quote endpoint on a router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Quote)
}

// Quote resolves the product snapshot and returns the computed breakdown,
// with an optional deposit preview when a percentage is supplied.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var payload quotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		countQuote("invalid")
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid quote payload", common.ValidationDetails(err))
		return
	}

	snapshot, err := h.Catalog.Product(r.Context(), payload.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rows, err := snapshot.ResolveSizes(payload.SizeBreakdown)
	if err != nil {
		h.writeError(w, err)
		return
	}
	material, err := snapshot.ResolveMaterial(strings.TrimSpace(payload.Material))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var design *pricing.CustomDesign
	if payload.CustomDesign != nil {
		design = &pricing.CustomDesign{
			IsCustom:  payload.CustomDesign.IsCustom,
			DesignURL: payload.CustomDesign.DesignURL,
			Notes:     payload.CustomDesign.Notes,
		}
		if design.IsCustom {
			design.CustomizationFee = snapshot.CustomizationFee
		}
	}

	details, err := pricing.CalculateBreakdown(pricing.Input{
		SizeBreakdown: rows,
		Product:       snapshot.Pricing(),
		Material:      material,
		CustomDesign:  design,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := quoteResponse{PriceDetails: details}
	if payload.DPPercentage != nil {
		split, err := pricing.SplitDeposit(details.Total, *payload.DPPercentage)
		if err != nil {
			h.writeError(w, err)
			return
		}
		resp.Deposit = &split
	}
	countQuote("ok")
	common.JSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		countQuote("not_found")
		common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
	case errors.Is(err, catalog.ErrOptionUnavailable):
		countQuote("invalid")
		common.JSONError(w, http.StatusUnprocessableEntity, "OPTION_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, pricing.ErrInvalidInput):
		countQuote("invalid")
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		countQuote("error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute quote", nil)
	}
}

func countQuote(result string) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues("quote_api", result).Inc()
	}
}
