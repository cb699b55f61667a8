package menucache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arbor",
		Subsystem: "menu_cache",
		Name:      "ops_total",
		Help:      "Cache probe outcomes per shape.",
	}, []string{"shape", "result"})

	invalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arbor",
		Subsystem: "menu_cache",
		Name:      "invalidations_total",
		Help:      "Broad invalidation rounds performed after mutations.",
	})

	loaderSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arbor",
		Subsystem: "menu_cache",
		Name:      "loader_seconds",
		Help:      "Store reload time on cache miss, per shape.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"shape"})
)
