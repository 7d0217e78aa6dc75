package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/tautlabs/taut/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeLabeledMetric(w, "taut_resolve_total", "outcome", snap.ResolveOutcomes)
	writeMetric(w, "taut_resolve_cache_hits_total %d\n", snap.ResolveCacheHits)
	writeMetric(w, "taut_resolve_cache_misses_total %d\n", snap.ResolveCacheMisses)
	writeMetric(w, "taut_resolve_duration_seconds_count %d\n", snap.ResolveDurationCount)
	writeMetric(w, "taut_resolve_duration_seconds_sum %.6f\n", float64(snap.ResolveDurationTotalNs)/1e9)

	writeMetric(w, "taut_short_links_created_total %d\n", snap.ShortLinksCreated)
	writeMetric(w, "taut_short_links_deleted_total %d\n", snap.ShortLinksDeleted)
	writeMetric(w, "taut_microsites_created_total %d\n", snap.MicrositesCreated)
	writeMetric(w, "taut_microsites_updated_total %d\n", snap.MicrositesUpdated)
	writeMetric(w, "taut_microsites_deleted_total %d\n", snap.MicrositesDeleted)

	writeLabeledMetric(w, "taut_analytics_events_published_total", "status", snap.EventsPublished)
	writeLabeledMetric(w, "taut_analytics_events_processed_total", "status", snap.EventsProcessed)

	writeMetric(w, "taut_analytics_batches_total %d\n", snap.BatchCount)
	writeMetric(w, "taut_analytics_batch_events_total %d\n", snap.BatchEventTotal)
	writeMetric(w, "taut_analytics_queue_depth %d\n", snap.QueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// writeLabeledMetric emits one line per label value, sorted for stable output.
func writeLabeledMetric(w http.ResponseWriter, name, label string, values map[string]uint64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}
