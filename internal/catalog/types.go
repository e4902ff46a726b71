package catalog

import (
	"fmt"

	"github.com/noah-isme/backend-konveksi/internal/pricing"
)

// SizeOption is a size variant offered for a product.
type SizeOption struct {
	Size            string        `json:"size"`
	AdditionalPrice pricing.Money `json:"additionalPrice"`
	Available       bool          `json:"available"`
}

// MaterialChoice is a material offered for a product.
type MaterialChoice struct {
	Name            string        `json:"name"`
	AdditionalPrice pricing.Money `json:"additionalPrice"`
	Available       bool          `json:"available"`
}

// ColorOption is a color offered for a product.
type ColorOption struct {
	Name      string `json:"name"`
	Hex       string `json:"hex,omitempty"`
	Available bool   `json:"available"`
}

// ProductSnapshot is a read-only pricing snapshot returned by the backend
// catalog API. The calculators trust these values as given.
type ProductSnapshot struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	BasePrice        pricing.Money    `json:"basePrice"`
	DozenPrice       pricing.Money    `json:"dozenPrice"`
	Discount         float64          `json:"discount"`
	CustomizationFee pricing.Money    `json:"customizationFee"`
	Sizes            []SizeOption     `json:"sizes"`
	Materials        []MaterialChoice `json:"materials"`
	Colors           []ColorOption    `json:"colors"`
}

// Pricing extracts the calculator input subset of the snapshot.
func (p ProductSnapshot) Pricing() pricing.ProductPricing {
	return pricing.ProductPricing{
		BasePrice:        p.BasePrice,
		DozenPrice:       p.DozenPrice,
		Discount:         p.Discount,
		CustomizationFee: p.CustomizationFee,
	}
}

// Size looks up an available size variant by name.
func (p ProductSnapshot) Size(name string) (SizeOption, bool) {
	for _, s := range p.Sizes {
		if s.Size == name && s.Available {
			return s, true
		}
	}
	return SizeOption{}, false
}

// Material looks up an available material by name.
func (p ProductSnapshot) Material(name string) (MaterialChoice, bool) {
	for _, m := range p.Materials {
		if m.Name == name && m.Available {
			return m, true
		}
	}
	return MaterialChoice{}, false
}

// SizeSelection is a requested size/quantity pair before surcharges are
// resolved from the snapshot.
type SizeSelection struct {
	Size     string `json:"size" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// ResolveSizes maps requested size selections to calculator rows, taking
// every surcharge from the snapshot rather than the caller.
func (p ProductSnapshot) ResolveSizes(selections []SizeSelection) ([]pricing.SizeQuantity, error) {
	out := make([]pricing.SizeQuantity, 0, len(selections))
	for _, sel := range selections {
		size, ok := p.Size(sel.Size)
		if !ok {
			return nil, fmt.Errorf("size %q: %w", sel.Size, ErrOptionUnavailable)
		}
		out = append(out, pricing.SizeQuantity{
			Size:            size.Size,
			Quantity:        sel.Quantity,
			AdditionalPrice: size.AdditionalPrice,
		})
	}
	return out, nil
}

// ResolveMaterial maps a requested material name to a calculator option.
func (p ProductSnapshot) ResolveMaterial(name string) (*pricing.MaterialOption, error) {
	mat, ok := p.Material(name)
	if !ok {
		return nil, fmt.Errorf("material %q: %w", name, ErrOptionUnavailable)
	}
	return &pricing.MaterialOption{Name: mat.Name, AdditionalPrice: mat.AdditionalPrice}, nil
}
