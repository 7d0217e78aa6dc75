package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncResolveOutcome is a no-op.
func (n *NoopRecorder) IncResolveOutcome(outcome string) {}

// IncResolveCacheHit is a no-op.
func (n *NoopRecorder) IncResolveCacheHit() {}

// IncResolveCacheMiss is a no-op.
func (n *NoopRecorder) IncResolveCacheMiss() {}

// ObserveResolveDuration is a no-op.
func (n *NoopRecorder) ObserveResolveDuration(duration time.Duration) {}

// IncShortLinkCreated is a no-op.
func (n *NoopRecorder) IncShortLinkCreated() {}

// IncShortLinkDeleted is a no-op.
func (n *NoopRecorder) IncShortLinkDeleted() {}

// IncMicrositeCreated is a no-op.
func (n *NoopRecorder) IncMicrositeCreated() {}

// IncMicrositeUpdated is a no-op.
func (n *NoopRecorder) IncMicrositeUpdated() {}

// IncMicrositeDeleted is a no-op.
func (n *NoopRecorder) IncMicrositeDeleted() {}

// IncAnalyticsEventPublished is a no-op.
func (n *NoopRecorder) IncAnalyticsEventPublished(status string) {}

// IncAnalyticsEventProcessed is a no-op.
func (n *NoopRecorder) IncAnalyticsEventProcessed(status string) {}

// ObserveAnalyticsBatchSize is a no-op.
func (n *NoopRecorder) ObserveAnalyticsBatchSize(size int) {}

// ObserveAnalyticsBatchDuration is a no-op.
func (n *NoopRecorder) ObserveAnalyticsBatchDuration(duration time.Duration) {}

// SetAnalyticsQueueDepth is a no-op.
func (n *NoopRecorder) SetAnalyticsQueueDepth(depth int64) {}

// ObserveAnalyticsIngestLag is a no-op.
func (n *NoopRecorder) ObserveAnalyticsIngestLag(lag time.Duration) {}
