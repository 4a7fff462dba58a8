package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	availabilityQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "availability_queries_total",
			Help:      "Count of availability queries by endpoint.",
		},
		[]string{"endpoint"},
	)

	freeSlotsReturned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "free_slots_returned_total",
			Help:      "Count of free slots returned to callers.",
		},
	)

	busySync = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "busy_sync_total",
			Help:      "Count of external calendar sync runs by result.",
		},
		[]string{"result"},
	)

	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "cache_total",
			Help:      "Count of availability cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(availabilityQueries, freeSlotsReturned, busySync, cacheHits)
	})
}

func IncQuery(endpoint string) {
	availabilityQueries.WithLabelValues(endpoint).Inc()
}

func AddFreeSlots(n int) {
	freeSlotsReturned.Add(float64(n))
}

func IncBusySync(result string) {
	busySync.WithLabelValues(result).Inc()
}

func IncCache(outcome string) {
	cacheHits.WithLabelValues(outcome).Inc()
}
