package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts price breakdown computations by caller and outcome.
	QuoteTotal *prometheus.CounterVec
	// CartOpsTotal counts cart mutations by operation and outcome.
	CartOpsTotal *prometheus.CounterVec
	// CartPersistTotal counts fire-and-forget cart persistence attempts.
	CartPersistTotal *prometheus.CounterVec
	// OrderSubmitTotal counts order submissions by entry mode and outcome.
	OrderSubmitTotal *prometheus.CounterVec
	// CatalogLookupTotal counts catalog snapshot lookups by source.
	CatalogLookupTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of price breakdown computations by caller and result.",
		}, []string{"caller", "result"})
		CartOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Count of cart mutations by operation and result.",
		}, []string{"op", "result"})
		CartPersistTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_persist_total",
			Help:      "Count of cart persistence write outcomes.",
		}, []string{"result"})
		OrderSubmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_submissions_total",
			Help:      "Count of order submissions by entry mode and result.",
		}, []string{"mode", "result"})
		CatalogLookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_lookup_total",
			Help:      "Count of catalog snapshot lookups by source.",
		}, []string{"source"})

		QuoteTotal = registerCounterVec(reg, QuoteTotal)
		CartOpsTotal = registerCounterVec(reg, CartOpsTotal)
		CartPersistTotal = registerCounterVec(reg, CartPersistTotal)
		OrderSubmitTotal = registerCounterVec(reg, OrderSubmitTotal)
		CatalogLookupTotal = registerCounterVec(reg, CatalogLookupTotal)
	})
}
