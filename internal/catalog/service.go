package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-konveksi/internal/obs"
)

// Service resolves product snapshots with a cache-aside Redis layer in
// front of the backend catalog API.
type Service struct {
	Client *Client
	Cache  *Cache
	Logger zerolog.Logger
}

// Product returns the pricing snapshot for a product, preferring the cache.
// Cache failures degrade to a direct backend lookup.
func (s *Service) Product(ctx context.Context, productID string) (ProductSnapshot, error) {
	if s == nil || s.Client == nil {
		return ProductSnapshot{}, errors.New("catalog: service not configured")
	}
	key := "catalog:product:" + productID

	var cached ProductSnapshot
	hit, err := s.Cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.Logger.Warn().Err(err).Str("product_id", productID).Msg("catalog cache read failed")
	}
	if hit {
		countLookup("cache")
		return cached, nil
	}

	snapshot, err := s.Client.Product(ctx, productID)
	if err != nil {
		return ProductSnapshot{}, err
	}
	countLookup("backend")
	if err := s.Cache.SetJSON(ctx, key, snapshot); err != nil {
		s.Logger.Warn().Err(err).Str("product_id", productID).Msg("catalog cache write failed")
	}
	return snapshot, nil
}

func countLookup(source string) {
	if obs.CatalogLookupTotal != nil {
		obs.CatalogLookupTotal.WithLabelValues(source).Inc()
	}
}
