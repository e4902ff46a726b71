package cart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-konveksi/internal/cart"
	"github.com/noah-isme/backend-konveksi/internal/pricing"
)

func newRedisStore(t *testing.T) (*cart.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	persist := cart.RedisPersistence{Client: rdb, Prefix: "test:cart:", TTL: time.Hour}
	return cart.NewStore(persist, zerolog.Nop()), mr
}

func kaosInput(qty int) cart.AddInput {
	return cart.AddInput{
		ProductID:   "prd-kaos",
		ProductName: "Kaos Polos",
		Product:     pricing.ProductPricing{BasePrice: 50_000, DozenPrice: 480_000},
		Material:    &pricing.MaterialOption{Name: "Cotton Combed 30s"},
		SizeBreakdown: []pricing.SizeQuantity{
			{Size: "M", Quantity: qty},
		},
	}
}

func TestAddComputesAggregates(t *testing.T) {
	store, _ := newRedisStore(t)
	st, err := store.Add(context.Background(), "user-1", kaosInput(12))
	require.NoError(t, err)
	require.Len(t, st.Items, 1)
	require.Equal(t, 12, st.TotalItems)
	require.Equal(t, pricing.Money(480_000), st.Total)
	require.Equal(t, st.Subtotal, st.Total)
	require.Equal(t, st.Items[0].PriceDetails.Total, st.Total)
}

func TestAddReplacesSameProduct(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	first, err := store.Add(ctx, "user-1", kaosInput(12))
	require.NoError(t, err)
	second, err := store.Add(ctx, "user-1", kaosInput(3))
	require.NoError(t, err)

	// Re-adding the same product replaces the line instead of appending.
	require.Len(t, second.Items, 1)
	require.Equal(t, first.Items[0].ID, second.Items[0].ID)
	require.Equal(t, 3, second.TotalItems)
	require.Equal(t, pricing.Money(150_000), second.Total)
}

func TestAddValidation(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	in := kaosInput(1)
	in.ProductID = ""
	_, err := store.Add(ctx, "user-1", in)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	in = kaosInput(1)
	in.SizeBreakdown = nil
	_, err = store.Add(ctx, "user-1", in)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	in = kaosInput(1)
	in.Material = nil
	_, err = store.Add(ctx, "user-1", in)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	in = kaosInput(1)
	in.SizeBreakdown[0].Quantity = -2
	_, err = store.Add(ctx, "user-1", in)
	require.ErrorIs(t, err, pricing.ErrInvalidInput)
}

func TestUpdateRecomputesBreakdown(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	st, err := store.Add(ctx, "user-1", kaosInput(12))
	require.NoError(t, err)

	updated, err := store.UpdateItem(ctx, "user-1", st.Items[0].ID, cart.Update{
		SizeBreakdown: []pricing.SizeQuantity{{Size: "M", Quantity: 6}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, updated.TotalItems)
	// Below the dozen threshold the line reverts to the base price.
	require.Equal(t, pricing.Money(300_000), updated.Total)
}

func TestRemoveAndClear(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	st, err := store.Add(ctx, "user-1", kaosInput(2))
	require.NoError(t, err)

	other := kaosInput(1)
	other.ProductID = "prd-polo"
	st, err = store.Add(ctx, "user-1", other)
	require.NoError(t, err)
	require.Len(t, st.Items, 2)

	st, err = store.Remove(ctx, "user-1", st.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, st.Items, 1)

	_, err = store.Remove(ctx, "user-1", "nope")
	require.ErrorIs(t, err, cart.ErrNotFound)

	st, err = store.Clear(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, st.Items)
	require.Zero(t, st.Total)
}

func TestAggregateConsistencyAcrossMutations(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	inputs := []cart.AddInput{kaosInput(5), kaosInput(14)}
	inputs[1].ProductID = "prd-jaket"
	inputs[1].Product = pricing.ProductPricing{BasePrice: 120_000, DozenPrice: 1_320_000, Discount: 5}

	var st cart.State
	var err error
	for _, in := range inputs {
		st, err = store.Add(ctx, "user-1", in)
		require.NoError(t, err)
	}
	st, err = store.UpdateItem(ctx, "user-1", st.Items[0].ID, cart.Update{
		SizeBreakdown: []pricing.SizeQuantity{{Size: "L", Quantity: 13}},
	})
	require.NoError(t, err)

	var total pricing.Money
	items := 0
	for _, line := range st.Items {
		total += line.PriceDetails.Total
		items += line.PriceDetails.TotalQuantity
	}
	require.Equal(t, total, st.Total)
	require.Equal(t, items, st.TotalItems)
}

func TestPersistAndReload(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	st, err := store.Add(ctx, "user-1", kaosInput(12))
	require.NoError(t, err)
	require.True(t, mr.Exists("test:cart:user-1"))

	// A fresh store (new session) reloads the persisted snapshot.
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	fresh := cart.NewStore(cart.RedisPersistence{Client: rdb, Prefix: "test:cart:", TTL: time.Hour}, zerolog.Nop())
	loaded, err := fresh.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, st.Total, loaded.Total)
	require.Len(t, loaded.Items, 1)
	require.Equal(t, st.Items[0].PriceDetails, loaded.Items[0].PriceDetails)
}

type failingPersistence struct{ saves int }

func (f *failingPersistence) Load(context.Context, string) (cart.State, bool, error) {
	return cart.State{}, false, nil
}

func (f *failingPersistence) Save(context.Context, string, cart.State) error {
	f.saves++
	return errors.New("redis down")
}

func (f *failingPersistence) Delete(context.Context, string) error { return nil }

func TestPersistenceFailureDoesNotRollBack(t *testing.T) {
	persist := &failingPersistence{}
	store := cart.NewStore(persist, zerolog.Nop())
	ctx := context.Background()

	st, err := store.Add(ctx, "user-1", kaosInput(2))
	require.NoError(t, err)
	require.Equal(t, 2, st.TotalItems)
	require.Equal(t, 1, persist.saves)

	// In-memory state survives the failed write.
	reloaded, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, st.Total, reloaded.Total)
}

func TestSubscribersReceiveSnapshots(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	var notified []cart.State
	store.Subscribe(func(userID string, st cart.State) {
		require.Equal(t, "user-1", userID)
		notified = append(notified, st)
	})

	st, err := store.Add(ctx, "user-1", kaosInput(2))
	require.NoError(t, err)
	_, err = store.Remove(ctx, "user-1", st.Items[0].ID)
	require.NoError(t, err)

	require.Len(t, notified, 2)
	require.Equal(t, pricing.Money(100_000), notified[0].Total)
	require.Zero(t, notified[1].Total)
}
