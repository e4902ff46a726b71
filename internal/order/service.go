package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-konveksi/internal/cart"
	"github.com/noah-isme/backend-konveksi/internal/catalog"
	"github.com/noah-isme/backend-konveksi/internal/obs"
	"github.com/noah-isme/backend-konveksi/internal/pricing"
)

// Payment types accepted at checkout.
const (
	PaymentFull = "full"
	PaymentDP   = "dp"
)

// ErrEmptyCart is returned when checkout finds no lines to submit.
var ErrEmptyCart = errors.New("order: cart is empty")

// ErrPaymentInvalid covers unknown payment types and down payments
// outside the policy window.
var ErrPaymentInvalid = errors.New("order: invalid payment terms")

// Service drives order submission. Cart checkout and manual staff entry
// share the same calculator and the same backend submission path, so a
// breakdown shown anywhere is the breakdown that gets stored.
type Service struct {
	Client  *Client
	Cart    *cart.Store
	Catalog *catalog.Service
	Logger  zerolog.Logger
}

// CheckoutInput carries the payment terms for a cart checkout.
type CheckoutInput struct {
	PaymentType  string
	DPPercentage float64
	Notes        string
}

// ManualInput describes an offline order recorded by staff. Pricing
// follows the exact same path as a customer cart line.
type ManualInput struct {
	CustomerName  string
	CustomerPhone string
	ProductID     string
	Material      string
	SizeBreakdown []catalog.SizeSelection
	CustomDesign  *pricing.CustomDesign
	PaymentType   string
	DPPercentage  float64
	Notes         string
}

// Checkout submits the user's cart as an order and clears the cart on
// success.
func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (Order, error) {
	st, err := s.Cart.Get(ctx, userID)
	if err != nil {
		countSubmit("cart", "error")
		return Order{}, err
	}
	if len(st.Items) == 0 {
		countSubmit("cart", "empty")
		return Order{}, ErrEmptyCart
	}

	deposit, err := paymentSplit(st.Total, in.PaymentType, in.DPPercentage)
	if err != nil {
		countSubmit("cart", "invalid")
		return Order{}, err
	}

	sub := Submission{
		UserID:          userID,
		Source:          "cart",
		PaymentType:     in.PaymentType,
		DPPercentage:    dpPercentage(in.PaymentType, in.DPPercentage),
		Items:           make([]SubmitLine, 0, len(st.Items)),
		Subtotal:        st.Subtotal,
		Total:           st.Total,
		DepositAmount:   deposit.Amount,
		RemainingAmount: deposit.Remaining,
		Notes:           in.Notes,
	}
	for _, line := range st.Items {
		sub.Items = append(sub.Items, SubmitLine{
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			Material:      line.Material,
			CustomDesign:  line.CustomDesign,
			SizeBreakdown: line.SizeBreakdown,
			PriceDetails:  line.PriceDetails,
		})
	}

	placed, err := s.Client.Submit(ctx, sub, uuid.NewString())
	if err != nil {
		countSubmit("cart", "error")
		return Order{}, err
	}
	if _, err := s.Cart.Clear(ctx, userID); err != nil {
		// The order is already placed; a stale cart is recoverable.
		s.Logger.Warn().Err(err).Str("user_id", userID).Str("order_id", placed.ID).Msg("cart clear after checkout failed")
	}
	countSubmit("cart", "ok")
	return placed, nil
}

// Manual records an offline order on behalf of a customer. The line is
// priced from the live catalog snapshot through the shared calculator.
func (s *Service) Manual(ctx context.Context, staffID string, in ManualInput) (Order, error) {
	snapshot, err := s.Catalog.Product(ctx, in.ProductID)
	if err != nil {
		countSubmit("manual", "error")
		return Order{}, err
	}
	rows, err := snapshot.ResolveSizes(in.SizeBreakdown)
	if err != nil {
		countSubmit("manual", "invalid")
		return Order{}, err
	}
	material, err := snapshot.ResolveMaterial(strings.TrimSpace(in.Material))
	if err != nil {
		countSubmit("manual", "invalid")
		return Order{}, err
	}
	design := in.CustomDesign
	if design != nil && design.IsCustom {
		design.CustomizationFee = snapshot.CustomizationFee
	}

	details, err := pricing.CalculateBreakdown(pricing.Input{
		SizeBreakdown: rows,
		Product:       snapshot.Pricing(),
		Material:      material,
		CustomDesign:  design,
	})
	if err != nil {
		countSubmit("manual", "invalid")
		return Order{}, err
	}

	deposit, err := paymentSplit(details.Total, in.PaymentType, in.DPPercentage)
	if err != nil {
		countSubmit("manual", "invalid")
		return Order{}, err
	}

	sub := Submission{
		UserID:          staffID,
		Source:          "manual",
		PaymentType:     in.PaymentType,
		DPPercentage:    dpPercentage(in.PaymentType, in.DPPercentage),
		Items: []SubmitLine{{
			ProductID:     snapshot.ID,
			ProductName:   snapshot.Name,
			Material:      material,
			CustomDesign:  design,
			SizeBreakdown: rows,
			PriceDetails:  details,
		}},
		Subtotal:        details.Total,
		Total:           details.Total,
		DepositAmount:   deposit.Amount,
		RemainingAmount: deposit.Remaining,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		Notes:           in.Notes,
	}

	placed, err := s.Client.Submit(ctx, sub, uuid.NewString())
	if err != nil {
		countSubmit("manual", "error")
		return Order{}, err
	}
	countSubmit("manual", "ok")
	return placed, nil
}

// Detail returns the stored order with its submission-time breakdown.
func (s *Service) Detail(ctx context.Context, orderID string) (Order, error) {
	return s.Client.Detail(ctx, orderID)
}

// paymentSplit validates the payment terms and computes the deposit
// split. Full payment means the whole total is due up front; a down
// payment must fall inside the business policy window.
func paymentSplit(total pricing.Money, paymentType string, percentage float64) (pricing.DepositSplit, error) {
	switch paymentType {
	case PaymentFull:
		return pricing.DepositSplit{Amount: total, Remaining: 0}, nil
	case PaymentDP:
		if percentage < pricing.DepositMinPercent || percentage > pricing.DepositMaxPercent {
			return pricing.DepositSplit{}, fmt.Errorf("down payment must be within [%d, %d] percent: %w",
				pricing.DepositMinPercent, pricing.DepositMaxPercent, ErrPaymentInvalid)
		}
		return pricing.SplitDeposit(total, percentage)
	default:
		return pricing.DepositSplit{}, fmt.Errorf("unknown payment type %q: %w", paymentType, ErrPaymentInvalid)
	}
}

func dpPercentage(paymentType string, percentage float64) float64 {
	if paymentType == PaymentDP {
		return percentage
	}
	return 0
}

func countSubmit(mode, result string) {
	if obs.OrderSubmitTotal != nil {
		obs.OrderSubmitTotal.WithLabelValues(mode, result).Inc()
	}
}
