// Package metrics exposes Prometheus counters for the ordering flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordini_orders_created_total",
		Help: "Orders placed through checkout.",
	})

	OrdersConsolidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordini_orders_consolidated_total",
		Help: "Orders marked as paid and merged into a kitchen batch.",
	})

	OrdersRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordini_orders_removed_total",
		Help: "Orders removed from a kitchen batch back to pending.",
	})

	BatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordini_batches_created_total",
		Help: "Kitchen batches opened.",
	})

	BatchesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordini_batches_completed_total",
		Help: "Kitchen batches completed.",
	})

	ConsolidationConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordini_consolidation_conflicts_total",
		Help: "Merge or removal attempts rejected because of a status conflict.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
