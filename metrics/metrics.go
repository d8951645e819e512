package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "luckydraw"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	drawsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "requests_total",
			Help:      "Total number of draw requests by outcome.",
		},
		[]string{"outcome"},
	)

	unitsDrawn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "units_total",
			Help:      "Total number of prize units drawn, by rank.",
		},
		[]string{"rank"},
	)

	inventoryRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "remaining_units",
			Help:      "Prize units still available in the session snapshot.",
		},
	)

	persistenceFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "persistence_failures_total",
			Help:      "Inventory saves that failed after a successful draw.",
		},
	)

	celebrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reveal",
			Name:      "celebrations_total",
			Help:      "Times the celebratory effect was switched on, by triggering rank.",
		},
		[]string{"rank"},
	)

	revealsFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reveal",
			Name:      "finished_total",
			Help:      "Reveal sessions that reached the done phase.",
		},
	)
)

func init() {
	Registry.MustRegister(
		drawsTotal,
		unitsDrawn,
		inventoryRemaining,
		persistenceFailures,
		celebrations,
		revealsFinished,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordDraw counts a draw request outcome ("success", "insufficient", "denied", "closed", "error")
func RecordDraw(outcome string) {
	drawsTotal.WithLabelValues(outcome).Inc()
}

// RecordUnitsDrawn counts drawn units for one rank
func RecordUnitsDrawn(rank, count int) {
	unitsDrawn.WithLabelValues(strconv.Itoa(rank)).Add(float64(count))
}

// SetInventoryRemaining updates the remaining-units gauge
func SetInventoryRemaining(total int) {
	inventoryRemaining.Set(float64(total))
}

// RecordPersistenceFailure counts a failed inventory save
func RecordPersistenceFailure() {
	persistenceFailures.Inc()
}

// RecordCelebration counts a celebration switch-on
func RecordCelebration(rank int) {
	celebrations.WithLabelValues(strconv.Itoa(rank)).Inc()
}

// RecordRevealFinished counts a completed reveal session
func RecordRevealFinished() {
	revealsFinished.Inc()
}
