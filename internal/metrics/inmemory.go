package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ResolveOutcomes        map[string]uint64
	ResolveCacheHits       uint64
	ResolveCacheMisses     uint64
	ResolveDurationCount   uint64
	ResolveDurationTotalNs int64

	ShortLinksCreated uint64
	ShortLinksDeleted uint64
	MicrositesCreated uint64
	MicrositesUpdated uint64
	MicrositesDeleted uint64

	EventsPublished map[string]uint64
	EventsProcessed map[string]uint64
	BatchCount      uint64
	BatchEventTotal uint64
	QueueDepth      int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	resolveCacheHits       uint64
	resolveCacheMisses     uint64
	resolveDurationCount   uint64
	resolveDurationTotalNs int64

	shortLinksCreated uint64
	shortLinksDeleted uint64
	micrositesCreated uint64
	micrositesUpdated uint64
	micrositesDeleted uint64

	batchCount      uint64
	batchEventTotal uint64
	queueDepth      int64

	mu              sync.Mutex
	resolveOutcomes map[string]uint64
	eventsPublished map[string]uint64
	eventsProcessed map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		resolveOutcomes: make(map[string]uint64),
		eventsPublished: make(map[string]uint64),
		eventsProcessed: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	outcomes := copyCounters(m.resolveOutcomes)
	published := copyCounters(m.eventsPublished)
	processed := copyCounters(m.eventsProcessed)
	m.mu.Unlock()

	return Snapshot{
		ResolveOutcomes:        outcomes,
		ResolveCacheHits:       atomic.LoadUint64(&m.resolveCacheHits),
		ResolveCacheMisses:     atomic.LoadUint64(&m.resolveCacheMisses),
		ResolveDurationCount:   atomic.LoadUint64(&m.resolveDurationCount),
		ResolveDurationTotalNs: atomic.LoadInt64(&m.resolveDurationTotalNs),
		ShortLinksCreated:      atomic.LoadUint64(&m.shortLinksCreated),
		ShortLinksDeleted:      atomic.LoadUint64(&m.shortLinksDeleted),
		MicrositesCreated:      atomic.LoadUint64(&m.micrositesCreated),
		MicrositesUpdated:      atomic.LoadUint64(&m.micrositesUpdated),
		MicrositesDeleted:      atomic.LoadUint64(&m.micrositesDeleted),
		EventsPublished:        published,
		EventsProcessed:        processed,
		BatchCount:             atomic.LoadUint64(&m.batchCount),
		BatchEventTotal:        atomic.LoadUint64(&m.batchEventTotal),
		QueueDepth:             atomic.LoadInt64(&m.queueDepth),
	}
}

// IncResolveOutcome increments the counter for a resolution outcome.
func (m *InMemoryRecorder) IncResolveOutcome(outcome string) {
	m.mu.Lock()
	m.resolveOutcomes[outcome]++
	m.mu.Unlock()
}

// IncResolveCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncResolveCacheHit() {
	atomic.AddUint64(&m.resolveCacheHits, 1)
}

// IncResolveCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncResolveCacheMiss() {
	atomic.AddUint64(&m.resolveCacheMisses, 1)
}

// ObserveResolveDuration records resolution duration.
func (m *InMemoryRecorder) ObserveResolveDuration(duration time.Duration) {
	atomic.AddUint64(&m.resolveDurationCount, 1)
	atomic.AddInt64(&m.resolveDurationTotalNs, duration.Nanoseconds())
}

// IncShortLinkCreated increments the short link created counter.
func (m *InMemoryRecorder) IncShortLinkCreated() {
	atomic.AddUint64(&m.shortLinksCreated, 1)
}

// IncShortLinkDeleted increments the short link deleted counter.
func (m *InMemoryRecorder) IncShortLinkDeleted() {
	atomic.AddUint64(&m.shortLinksDeleted, 1)
}

// IncMicrositeCreated increments the microsite created counter.
func (m *InMemoryRecorder) IncMicrositeCreated() {
	atomic.AddUint64(&m.micrositesCreated, 1)
}

// IncMicrositeUpdated increments the microsite updated counter.
func (m *InMemoryRecorder) IncMicrositeUpdated() {
	atomic.AddUint64(&m.micrositesUpdated, 1)
}

// IncMicrositeDeleted increments the microsite deleted counter.
func (m *InMemoryRecorder) IncMicrositeDeleted() {
	atomic.AddUint64(&m.micrositesDeleted, 1)
}

// IncAnalyticsEventPublished increments the published counter for a status.
func (m *InMemoryRecorder) IncAnalyticsEventPublished(status string) {
	m.mu.Lock()
	m.eventsPublished[status]++
	m.mu.Unlock()
}

// IncAnalyticsEventProcessed increments the processed counter for a status.
func (m *InMemoryRecorder) IncAnalyticsEventProcessed(status string) {
	m.mu.Lock()
	m.eventsProcessed[status]++
	m.mu.Unlock()
}

// ObserveAnalyticsBatchSize records a processed batch size.
func (m *InMemoryRecorder) ObserveAnalyticsBatchSize(size int) {
	atomic.AddUint64(&m.batchCount, 1)
	atomic.AddUint64(&m.batchEventTotal, uint64(size))
}

// ObserveAnalyticsBatchDuration is recorded only as batch count here.
func (m *InMemoryRecorder) ObserveAnalyticsBatchDuration(duration time.Duration) {}

// SetAnalyticsQueueDepth stores the current queue depth.
func (m *InMemoryRecorder) SetAnalyticsQueueDepth(depth int64) {
	atomic.StoreInt64(&m.queueDepth, depth)
}

// ObserveAnalyticsIngestLag is not tracked in memory.
func (m *InMemoryRecorder) ObserveAnalyticsIngestLag(lag time.Duration) {}

func copyCounters(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
