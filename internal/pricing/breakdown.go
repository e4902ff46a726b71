package pricing

import (
	"errors"
	"fmt"
	"math"
)

// Money is a monetary amount in whole Rupiah. No fractional currency is
// carried; every division rounds at the point of computation.
type Money = int64

// DozenSize is the quantity threshold at which dozen pricing becomes available.
const DozenSize = 12

// ErrInvalidInput is returned when calculator inputs fail validation.
var ErrInvalidInput = errors.New("pricing: invalid input")

// SizeQuantity is one row of a size breakdown: a size variant, how many
// units of it are ordered, and its per-unit surcharge.
type SizeQuantity struct {
	Size            string `json:"size"`
	Quantity        int    `json:"quantity"`
	AdditionalPrice Money  `json:"additionalPrice"`
}

// MaterialOption is an optional per-unit material surcharge.
type MaterialOption struct {
	Name            string `json:"name"`
	AdditionalPrice Money  `json:"additionalPrice"`
}

// CustomDesign describes a customer-supplied design. The fee contributes
// nothing unless IsCustom is set.
type CustomDesign struct {
	IsCustom         bool   `json:"isCustom"`
	CustomizationFee Money  `json:"customizationFee"`
	DesignURL        string `json:"designUrl,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// ProductPricing is the read-only pricing snapshot taken from the catalog.
type ProductPricing struct {
	BasePrice        Money   `json:"basePrice"`
	DozenPrice       Money   `json:"dozenPrice"`
	Discount         float64 `json:"discount"`
	CustomizationFee Money   `json:"customizationFee"`
}

// SizeDetail is the computed pricing for one size row. PricePerUnit is a
// blended rate when the row spans both dozen- and unit-rate allocations.
type SizeDetail struct {
	Size         string `json:"size"`
	Quantity     int    `json:"quantity"`
	PricePerUnit Money  `json:"pricePerUnit"`
	Subtotal     Money  `json:"subtotal"`
}

// Components echoes the raw price inputs the breakdown was computed from.
type Components struct {
	BasePrice               Money `json:"basePrice"`
	DozenPrice              Money `json:"dozenPrice"`
	MaterialAdditionalPrice Money `json:"materialAdditionalPrice"`
	CustomizationFee        Money `json:"customizationFee"`
}

// Breakdown is the canonical price breakdown for one order line. It is
// produced by a single code path and read verbatim by every consumer: the
// cart, checkout, manual order entry, and order detail views.
type Breakdown struct {
	Subtotal           Money        `json:"subtotal"`
	Total              Money        `json:"total"`
	SizeDetails        []SizeDetail `json:"sizeDetails"`
	TotalQuantity      int          `json:"totalQuantity"`
	TotalDozens        int          `json:"totalDozens"`
	CustomDesignFee    Money        `json:"customDesignFee"`
	DiscountAmount     Money        `json:"discountAmount"`
	DiscountPercentage float64      `json:"discountPercentage"`
	PriceComponents    Components   `json:"priceComponents"`
}

// Input groups the arguments of CalculateBreakdown.
type Input struct {
	SizeBreakdown []SizeQuantity
	Product       ProductPricing
	Material      *MaterialOption
	CustomDesign  *CustomDesign
}

// CalculateBreakdown computes the deterministic price breakdown for one
// order line. When the cumulative quantity reaches DozenSize and the
// product carries a dozen price, the dozen-eligible portion of the order
// is billed at round(dozenPrice/12) per unit, allocated to the cheapest
// size variants first; the remainder bills at the base price. Size and
// material surcharges apply per unit regardless of tier.
//
// An empty size breakdown yields an all-zero breakdown rather than an
// error. Negative quantities or a missing base price are rejected.
func CalculateBreakdown(in Input) (Breakdown, error) {
	if err := validate(in); err != nil {
		return Breakdown{}, err
	}

	var materialAdd Money
	if in.Material != nil {
		materialAdd = in.Material.AdditionalPrice
	}
	out := Breakdown{
		SizeDetails:        make([]SizeDetail, 0, len(in.SizeBreakdown)),
		DiscountPercentage: in.Product.Discount,
		PriceComponents: Components{
			BasePrice:               in.Product.BasePrice,
			DozenPrice:              in.Product.DozenPrice,
			MaterialAdditionalPrice: materialAdd,
		},
	}
	if in.CustomDesign != nil && in.CustomDesign.IsCustom {
		out.PriceComponents.CustomizationFee = in.CustomDesign.CustomizationFee
	}

	totalQty := 0
	for _, row := range in.SizeBreakdown {
		totalQty += row.Quantity
	}
	out.TotalQuantity = totalQty
	out.TotalDozens = totalQty / DozenSize

	dozenEligible := 0
	if totalQty >= DozenSize && in.Product.DozenPrice > 0 {
		dozenEligible = (totalQty / DozenSize) * DozenSize
	}
	dozenQtys := Allocate(in.SizeBreakdown, dozenEligible)
	dozenUnit := roundDiv(in.Product.DozenPrice, DozenSize)

	for i, row := range in.SizeBreakdown {
		unitRate := in.Product.BasePrice + row.AdditionalPrice + materialAdd
		detail := SizeDetail{Size: row.Size, Quantity: row.Quantity, PricePerUnit: unitRate}
		if row.Quantity > 0 {
			dozenQty := dozenQtys[i]
			unitQty := row.Quantity - dozenQty
			dozenRate := dozenUnit + row.AdditionalPrice + materialAdd
			cost := Money(dozenQty)*dozenRate + Money(unitQty)*unitRate
			detail.PricePerUnit = roundDiv(cost, Money(row.Quantity))
			detail.Subtotal = detail.PricePerUnit * Money(row.Quantity)
			if detail.Subtotal < 0 {
				detail.PricePerUnit = 0
				detail.Subtotal = 0
			}
		}
		out.SizeDetails = append(out.SizeDetails, detail)
		out.Subtotal += detail.Subtotal
	}
	if out.Subtotal < 0 {
		out.Subtotal = 0
	}

	if in.CustomDesign != nil && in.CustomDesign.IsCustom {
		out.CustomDesignFee = in.CustomDesign.CustomizationFee * Money(totalQty)
	}
	out.DiscountAmount = roundPercent(out.Subtotal, in.Product.Discount)
	out.Total = out.Subtotal + out.CustomDesignFee - out.DiscountAmount
	return out, nil
}

func validate(in Input) error {
	if in.Product.BasePrice <= 0 {
		return fmt.Errorf("base price must be positive: %w", ErrInvalidInput)
	}
	for _, row := range in.SizeBreakdown {
		if row.Quantity < 0 {
			return fmt.Errorf("size %q has negative quantity: %w", row.Size, ErrInvalidInput)
		}
		if row.AdditionalPrice < 0 {
			return fmt.Errorf("size %q has negative surcharge: %w", row.Size, ErrInvalidInput)
		}
	}
	if in.Material != nil && in.Material.AdditionalPrice < 0 {
		return fmt.Errorf("material surcharge must not be negative: %w", ErrInvalidInput)
	}
	if in.CustomDesign != nil && in.CustomDesign.CustomizationFee < 0 {
		return fmt.Errorf("customization fee must not be negative: %w", ErrInvalidInput)
	}
	return nil
}

// roundDiv divides two monetary values rounding half up.
func roundDiv(a, b Money) Money {
	if b == 0 {
		return 0
	}
	if a < 0 {
		return -roundDiv(-a, b)
	}
	return (a + b/2) / b
}

// roundPercent applies a percentage to an amount, rounded to the nearest Rupiah.
func roundPercent(amount Money, percent float64) Money {
	if percent == 0 || amount == 0 {
		return 0
	}
	return Money(math.Round(float64(amount) * percent / 100))
}
