// Package metrics exposes the pipeline's Prometheus instrumentation.  The
// process is a batch job, not a server, so metrics are registered on the
// default registry and served from an optional listener the CLI can enable
// for long derivation runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	graphQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "citechain",
		Name:      "graph_query_duration_seconds",
		Help:      "Graph query duration by query type.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 5, 15, 60, 300},
	}, []string{"query"})

	batchesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "citechain",
		Name:      "batches_completed_total",
		Help:      "Builder batches checkpointed, by entity kind.",
	}, []string{"kind"})

	batchesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "citechain",
		Name:      "batches_failed_total",
		Help:      "Builder batches abandoned before checkpointing, by entity kind.",
	}, []string{"kind"})

	artifactHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "citechain",
		Name:      "artifact_cache_hits_total",
		Help:      "Artifact store hits, by pipeline stage.",
	}, []string{"stage"})

	artifactMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "citechain",
		Name:      "artifact_cache_misses_total",
		Help:      "Artifact store misses that triggered generation, by pipeline stage.",
	}, []string{"stage"})

	chainLength = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "citechain",
		Name:      "chain_length",
		Help:      "Derived citation chain lengths, by entity kind.",
		Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
	}, []string{"kind"})
)

// GraphQueryTimer times one graph query; call ObserveDuration when done.
func GraphQueryTimer(query string) *prometheus.Timer {
	return prometheus.NewTimer(graphQueryDuration.WithLabelValues(query))
}

// BatchCompleted counts one checkpointed builder batch.
func BatchCompleted(kind string) {
	batchesCompleted.WithLabelValues(kind).Inc()
}

// BatchFailed counts one abandoned builder batch.
func BatchFailed(kind string) {
	batchesFailed.WithLabelValues(kind).Inc()
}

// ArtifactAccess counts one artifact store lookup for a stage.
func ArtifactAccess(stage string, hit bool) {
	if hit {
		artifactHits.WithLabelValues(stage).Inc()
	} else {
		artifactMisses.WithLabelValues(stage).Inc()
	}
}

// ObserveChainLength records one derived chain's length.
func ObserveChainLength(kind string, length int) {
	chainLength.WithLabelValues(kind).Observe(float64(length))
}

// Handler serves the default registry, for the CLI's optional listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
