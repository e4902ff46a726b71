package order_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-konveksi/internal/cart"
	"github.com/noah-isme/backend-konveksi/internal/catalog"
	"github.com/noah-isme/backend-konveksi/internal/order"
	"github.com/noah-isme/backend-konveksi/internal/pricing"
	"github.com/noah-isme/backend-konveksi/internal/resilience"
)

const productJSON = `{"data":{
	"id":"prd-1","name":"Kaos Polos","basePrice":50000,"dozenPrice":480000,
	"discount":10,"customizationFee":15000,
	"sizes":[{"size":"M","additionalPrice":0,"available":true},{"size":"XXL","additionalPrice":3000,"available":true}],
	"materials":[{"name":"Cotton Combed 30s","additionalPrice":0,"available":true}]
}}`

type fakeBackend struct {
	submissions []order.Submission
	idemKeys    []string
	detail      order.Order
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/orders":
		var sub order.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.submissions = append(b.submissions, sub)
		b.idemKeys = append(b.idemKeys, r.Header.Get("Idempotency-Key"))
		placed := order.Order{
			ID:              "ord-1",
			UserID:          sub.UserID,
			Status:          "pending",
			Source:          sub.Source,
			PaymentType:     sub.PaymentType,
			DPPercentage:    sub.DPPercentage,
			Items:           sub.Items,
			Subtotal:        sub.Subtotal,
			Total:           sub.Total,
			DepositAmount:   sub.DepositAmount,
			RemainingAmount: sub.RemainingAmount,
			CreatedAt:       time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": placed})
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/orders/ord-1":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": b.detail})
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/products/prd-1":
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productJSON))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newService(t *testing.T) (*order.Service, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	httpClient := resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 2, BaseBackoff: time.Millisecond}
	svc := &order.Service{
		Client: &order.Client{BaseURL: srv.URL, HTTP: httpClient},
		Cart:   cart.NewStore(nil, zerolog.Nop()),
		Catalog: &catalog.Service{
			Client: &catalog.Client{BaseURL: srv.URL, HTTP: httpClient},
			Logger: zerolog.Nop(),
		},
		Logger: zerolog.Nop(),
	}
	return svc, backend
}

func seedCart(t *testing.T, store *cart.Store, userID string) cart.State {
	t.Helper()
	st, err := store.Add(context.Background(), userID, cart.AddInput{
		ProductID:   "prd-1",
		ProductName: "Kaos Polos",
		Product:     pricing.ProductPricing{BasePrice: 50_000, DozenPrice: 480_000},
		Material:    &pricing.MaterialOption{Name: "Cotton Combed 30s"},
		SizeBreakdown: []pricing.SizeQuantity{
			{Size: "M", Quantity: 12},
		},
	})
	require.NoError(t, err)
	return st
}

func TestCheckoutFullPayment(t *testing.T) {
	svc, backend := newService(t)
	seeded := seedCart(t, svc.Cart, "user-1")

	placed, err := svc.Checkout(context.Background(), "user-1", order.CheckoutInput{PaymentType: order.PaymentFull})
	require.NoError(t, err)
	require.Equal(t, "ord-1", placed.ID)
	require.Len(t, backend.submissions, 1)

	sub := backend.submissions[0]
	require.Equal(t, "cart", sub.Source)
	require.Equal(t, seeded.Total, sub.Total)
	require.Equal(t, seeded.Total, sub.DepositAmount)
	require.Zero(t, sub.RemainingAmount)
	require.NotEmpty(t, backend.idemKeys[0])

	// The submitted line embeds the cart's breakdown verbatim.
	require.Len(t, sub.Items, 1)
	require.Equal(t, seeded.Items[0].PriceDetails, sub.Items[0].PriceDetails)

	// Checkout clears the cart.
	after, err := svc.Cart.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Empty(t, after.Items)
}

func TestCheckoutDownPayment(t *testing.T) {
	svc, backend := newService(t)
	seeded := seedCart(t, svc.Cart, "user-1")

	_, err := svc.Checkout(context.Background(), "user-1", order.CheckoutInput{
		PaymentType:  order.PaymentDP,
		DPPercentage: 30,
	})
	require.NoError(t, err)

	sub := backend.submissions[0]
	want, err := pricing.SplitDeposit(seeded.Total, 30)
	require.NoError(t, err)
	require.Equal(t, want.Amount, sub.DepositAmount)
	require.Equal(t, want.Remaining, sub.RemainingAmount)
	require.Equal(t, seeded.Total, sub.DepositAmount+sub.RemainingAmount)
}

func TestCheckoutDepositPolicy(t *testing.T) {
	svc, _ := newService(t)
	seedCart(t, svc.Cart, "user-1")

	for _, pct := range []float64{0, 10, 29.9, 90.1, 100} {
		_, err := svc.Checkout(context.Background(), "user-1", order.CheckoutInput{
			PaymentType:  order.PaymentDP,
			DPPercentage: pct,
		})
		require.ErrorIs(t, err, order.ErrPaymentInvalid, "pct=%v", pct)
	}

	_, err := svc.Checkout(context.Background(), "user-1", order.CheckoutInput{PaymentType: "installments"})
	require.ErrorIs(t, err, order.ErrPaymentInvalid)

	// Rejected checkouts leave the cart intact.
	st, err := svc.Cart.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, st.Items, 1)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Checkout(context.Background(), "user-1", order.CheckoutInput{PaymentType: order.PaymentFull})
	require.ErrorIs(t, err, order.ErrEmptyCart)
}

func TestManualOrderSharesCalculator(t *testing.T) {
	svc, backend := newService(t)

	placed, err := svc.Manual(context.Background(), "staff-1", order.ManualInput{
		CustomerName: "Budi",
		ProductID:    "prd-1",
		Material:     "Cotton Combed 30s",
		SizeBreakdown: []catalog.SizeSelection{
			{Size: "M", Quantity: 10},
			{Size: "XXL", Quantity: 4},
		},
		PaymentType:  order.PaymentDP,
		DPPercentage: 50,
	})
	require.NoError(t, err)
	require.Equal(t, "ord-1", placed.ID)

	sub := backend.submissions[0]
	require.Equal(t, "manual", sub.Source)
	require.Equal(t, "Budi", sub.CustomerName)
	require.Len(t, sub.Items, 1)

	want, err := pricing.CalculateBreakdown(pricing.Input{
		SizeBreakdown: []pricing.SizeQuantity{
			{Size: "M", Quantity: 10},
			{Size: "XXL", Quantity: 4, AdditionalPrice: 3_000},
		},
		Product:  pricing.ProductPricing{BasePrice: 50_000, DozenPrice: 480_000, Discount: 10},
		Material: &pricing.MaterialOption{Name: "Cotton Combed 30s"},
	})
	require.NoError(t, err)
	require.Equal(t, want, sub.Items[0].PriceDetails)
	require.Equal(t, want.Total, sub.Total)
}

func TestManualOrderUnknownSize(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Manual(context.Background(), "staff-1", order.ManualInput{
		CustomerName:  "Budi",
		ProductID:     "prd-1",
		Material:      "Cotton Combed 30s",
		SizeBreakdown: []catalog.SizeSelection{{Size: "XS", Quantity: 3}},
		PaymentType:   order.PaymentFull,
	})
	require.ErrorIs(t, err, catalog.ErrOptionUnavailable)
}

func TestDetailReturnsStoredBreakdown(t *testing.T) {
	svc, backend := newService(t)
	backend.detail = order.Order{
		ID:          "ord-1",
		Status:      "confirmed",
		PaymentType: order.PaymentFull,
		Total:       597_000,
		Items: []order.SubmitLine{{
			ProductID:    "prd-1",
			PriceDetails: pricing.Breakdown{Subtotal: 580_000, Total: 597_000, TotalQuantity: 14, TotalDozens: 1},
		}},
	}

	got, err := svc.Detail(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Equal(t, backend.detail.Items[0].PriceDetails, got.Items[0].PriceDetails)
	require.Equal(t, "confirmed", got.Status)
}

func TestDetailNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Detail(context.Background(), "missing")
	require.ErrorIs(t, err, order.ErrNotFound)
}
