package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-konveksi/internal/obs"
	"github.com/noah-isme/backend-konveksi/internal/pricing"
)

// ErrNotFound indicates the requested cart line could not be located.
var ErrNotFound = errors.New("cart: line not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("cart: invalid input")

// Line is one configured product in a cart. PriceDetails is recomputed by
// the store whenever the size breakdown, material, or custom design
// changes; it is never edited in place.
type Line struct {
	ID            string                  `json:"id"`
	ProductID     string                  `json:"productId"`
	ProductName   string                  `json:"productName,omitempty"`
	BasePrice     pricing.Money           `json:"basePrice"`
	DozenPrice    pricing.Money           `json:"dozenPrice"`
	Discount      float64                 `json:"discount"`
	Material      *pricing.MaterialOption `json:"material,omitempty"`
	CustomDesign  *pricing.CustomDesign   `json:"customDesign,omitempty"`
	SizeBreakdown []pricing.SizeQuantity  `json:"sizeBreakdown"`
	PriceDetails  pricing.Breakdown       `json:"priceDetails"`
}

// State is a cart snapshot. The aggregate fields are always derived by
// folding over Items, never mutated independently.
type State struct {
	Items      []Line        `json:"items"`
	TotalItems int           `json:"totalItems"`
	Subtotal   pricing.Money `json:"subtotal"`
	Total      pricing.Money `json:"total"`
}

// Persistence stores cart state keyed by user identity.
type Persistence interface {
	Load(ctx context.Context, userID string) (State, bool, error)
	Save(ctx context.Context, userID string, state State) error
	Delete(ctx context.Context, userID string) error
}

// Subscriber receives the new cart snapshot after every mutation.
type Subscriber func(userID string, state State)

// Store owns per-user cart state. Every mutation recomputes the affected
// line's breakdown and re-derives the aggregates before the new snapshot
// is persisted and published to subscribers. Persistence failures are
// logged and do not roll back the in-memory state.
type Store struct {
	mu          sync.Mutex
	states      map[string]State
	subscribers []Subscriber

	Persist Persistence
	Logger  zerolog.Logger
}

// NewStore constructs a cart store with the given persistence backend.
func NewStore(persist Persistence, logger zerolog.Logger) *Store {
	return &Store{states: make(map[string]State), Persist: persist, Logger: logger}
}

// Subscribe registers an observer invoked after every cart mutation.
func (s *Store) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// AddInput describes a line to add to the cart. Pricing inputs are
// resolved from the catalog snapshot by the caller.
type AddInput struct {
	ProductID     string
	ProductName   string
	Product       pricing.ProductPricing
	Material      *pricing.MaterialOption
	CustomDesign  *pricing.CustomDesign
	SizeBreakdown []pricing.SizeQuantity
}

// Update carries partial changes to a cart line. Nil fields keep the
// line's current value.
type Update struct {
	SizeBreakdown []pricing.SizeQuantity
	Material      *pricing.MaterialOption
	CustomDesign  *pricing.CustomDesign
}

// Get returns the user's cart, loading it from persistence on first touch.
func (s *Store) Get(ctx context.Context, userID string) (State, error) {
	if userID == "" {
		return State{}, fmt.Errorf("user id required: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.loadLocked(ctx, userID)
	if err != nil {
		return State{}, err
	}
	return cloneState(st), nil
}

// Add inserts a cart line, replacing any existing line for the same
// product. At most one line exists per product: configuring the same
// product again overwrites the previous configuration.
func (s *Store) Add(ctx context.Context, userID string, in AddInput) (State, error) {
	if userID == "" {
		return State{}, fmt.Errorf("user id required: %w", ErrInvalidInput)
	}
	if in.ProductID == "" {
		return State{}, fmt.Errorf("product id required: %w", ErrInvalidInput)
	}
	if len(in.SizeBreakdown) == 0 {
		return State{}, fmt.Errorf("size breakdown required: %w", ErrInvalidInput)
	}
	if in.Material == nil {
		return State{}, fmt.Errorf("material required: %w", ErrInvalidInput)
	}

	details, err := pricing.CalculateBreakdown(pricing.Input{
		SizeBreakdown: in.SizeBreakdown,
		Product:       in.Product,
		Material:      in.Material,
		CustomDesign:  in.CustomDesign,
	})
	if err != nil {
		countOp("add", "invalid")
		return State{}, err
	}

	s.mu.Lock()
	st, err := s.loadLocked(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return State{}, err
	}
	line := Line{
		ID:            uuid.NewString(),
		ProductID:     in.ProductID,
		ProductName:   in.ProductName,
		BasePrice:     in.Product.BasePrice,
		DozenPrice:    in.Product.DozenPrice,
		Discount:      in.Product.Discount,
		Material:      in.Material,
		CustomDesign:  in.CustomDesign,
		SizeBreakdown: in.SizeBreakdown,
		PriceDetails:  details,
	}
	replaced := false
	for i := range st.Items {
		if st.Items[i].ProductID == in.ProductID {
			line.ID = st.Items[i].ID
			st.Items[i] = line
			replaced = true
			break
		}
	}
	if !replaced {
		st.Items = append(st.Items, line)
	}
	return s.commitLocked(ctx, userID, st, "add")
}

// UpdateItem merges partial changes into a line and recomputes its breakdown.
func (s *Store) UpdateItem(ctx context.Context, userID, lineID string, upd Update) (State, error) {
	if userID == "" || lineID == "" {
		return State{}, fmt.Errorf("user and line id required: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	st, err := s.loadLocked(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return State{}, err
	}
	idx := -1
	for i := range st.Items {
		if st.Items[i].ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		countOp("update", "not_found")
		return State{}, ErrNotFound
	}
	line := st.Items[idx]
	if upd.SizeBreakdown != nil {
		if len(upd.SizeBreakdown) == 0 {
			s.mu.Unlock()
			return State{}, fmt.Errorf("size breakdown must not be empty: %w", ErrInvalidInput)
		}
		line.SizeBreakdown = upd.SizeBreakdown
	}
	if upd.Material != nil {
		line.Material = upd.Material
	}
	if upd.CustomDesign != nil {
		line.CustomDesign = upd.CustomDesign
	}
	details, err := pricing.CalculateBreakdown(pricing.Input{
		SizeBreakdown: line.SizeBreakdown,
		Product: pricing.ProductPricing{
			BasePrice:  line.BasePrice,
			DozenPrice: line.DozenPrice,
			Discount:   line.Discount,
		},
		Material:     line.Material,
		CustomDesign: line.CustomDesign,
	})
	if err != nil {
		s.mu.Unlock()
		countOp("update", "invalid")
		return State{}, err
	}
	line.PriceDetails = details
	st.Items[idx] = line
	return s.commitLocked(ctx, userID, st, "update")
}

// Remove deletes a cart line.
func (s *Store) Remove(ctx context.Context, userID, lineID string) (State, error) {
	if userID == "" || lineID == "" {
		return State{}, fmt.Errorf("user and line id required: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	st, err := s.loadLocked(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return State{}, err
	}
	idx := -1
	for i := range st.Items {
		if st.Items[i].ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		countOp("remove", "not_found")
		return State{}, ErrNotFound
	}
	st.Items = append(st.Items[:idx], st.Items[idx+1:]...)
	return s.commitLocked(ctx, userID, st, "remove")
}

// Clear resets the user's cart to the empty state.
func (s *Store) Clear(ctx context.Context, userID string) (State, error) {
	if userID == "" {
		return State{}, fmt.Errorf("user id required: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	st := State{}
	s.states[userID] = st
	s.mu.Unlock()

	if s.Persist != nil {
		if err := s.Persist.Delete(context.WithoutCancel(ctx), userID); err != nil {
			s.Logger.Warn().Err(err).Str("user_id", userID).Msg("cart clear persistence failed")
			countPersist("error")
		} else {
			countPersist("ok")
		}
	}
	countOp("clear", "ok")
	s.notify(userID, st)
	return st, nil
}

// loadLocked returns the in-memory state for the user, falling back to
// persistence for the first access of a session. Callers hold s.mu.
func (s *Store) loadLocked(ctx context.Context, userID string) (State, error) {
	if st, ok := s.states[userID]; ok {
		return st, nil
	}
	if s.Persist != nil {
		st, found, err := s.Persist.Load(ctx, userID)
		if err != nil {
			return State{}, fmt.Errorf("load cart: %w", err)
		}
		if found {
			s.states[userID] = st
			return st, nil
		}
	}
	st := State{}
	s.states[userID] = st
	return st, nil
}

// commitLocked re-derives aggregates, stores the snapshot, persists it
// fire-and-forget, and publishes to subscribers. Releases s.mu.
func (s *Store) commitLocked(ctx context.Context, userID string, st State, op string) (State, error) {
	st.TotalItems = 0
	st.Subtotal = 0
	st.Total = 0
	for _, line := range st.Items {
		st.TotalItems += line.PriceDetails.TotalQuantity
		st.Total += line.PriceDetails.Total
	}
	// No cart-wide discount is layered on top of line-level discounts, so
	// the cart subtotal and total are defined identically.
	st.Subtotal = st.Total
	s.states[userID] = st
	snapshot := cloneState(st)
	s.mu.Unlock()

	if s.Persist != nil {
		// A failed write never rolls back the in-memory state; the next
		// mutation persists the corrected snapshot again.
		if err := s.Persist.Save(context.WithoutCancel(ctx), userID, snapshot); err != nil {
			s.Logger.Warn().Err(err).Str("user_id", userID).Msg("cart persistence failed")
			countPersist("error")
		} else {
			countPersist("ok")
		}
	}
	countOp(op, "ok")
	s.notify(userID, snapshot)
	return snapshot, nil
}

func (s *Store) notify(userID string, st State) {
	s.mu.Lock()
	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(userID, cloneState(st))
	}
}

func cloneState(st State) State {
	out := st
	out.Items = make([]Line, len(st.Items))
	copy(out.Items, st.Items)
	for i := range out.Items {
		out.Items[i].SizeBreakdown = append([]pricing.SizeQuantity(nil), out.Items[i].SizeBreakdown...)
		out.Items[i].PriceDetails.SizeDetails = append([]pricing.SizeDetail(nil), out.Items[i].PriceDetails.SizeDetails...)
	}
	return out
}

func countOp(op, result string) {
	if obs.CartOpsTotal != nil {
		obs.CartOpsTotal.WithLabelValues(op, result).Inc()
	}
}

func countPersist(result string) {
	if obs.CartPersistTotal != nil {
		obs.CartPersistTotal.WithLabelValues(result).Inc()
	}
}
