// Package analytics provides click event capture and processing.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tautlabs/taut/internal/metrics"
)

const (
	// StreamKey is the Redis stream for click events.
	StreamKey = "stream:click_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:click_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Event kinds carried on the stream.
const (
	KindShortLink     = "short_link"
	KindMicrositeView = "microsite_view"
	KindMicrositeLink = "microsite_link"
)

// UnknownCountry is recorded when no geolocation header is present.
const UnknownCountry = "unknown"

// ClickEventPayload is the compressed event format for the Redis stream.
// Exactly one of ShortLinkID or MicrositeID is set, per Kind.
type ClickEventPayload struct {
	Kind        string `json:"k"`            // short_link | microsite_view | microsite_link
	ShortLinkID string `json:"slid,omitempty"`
	ShortCode   string `json:"sc,omitempty"`
	MicrositeID string `json:"msid,omitempty"`
	LinkID      string `json:"lid,omitempty"` // microsite link, empty for page views
	UserAgent   string `json:"ua,omitempty"`  // user agent (truncated)
	Country     string `json:"cc,omitempty"`  // country or "unknown"
	OccurredAt  int64  `json:"t"`             // Unix milliseconds
}

// Publisher enqueues click events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new analytics event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "analytics.publisher"),
		metrics: recorder,
	}
}

// Publish adds a click event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event ClickEventPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget): a failed
// publish never delays or fails the redirect that produced it.
func (p *Publisher) PublishAsync(event ClickEventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish click event",
				"kind", event.Kind,
				"short_code", event.ShortCode,
				"error", err,
			)
			p.metrics.IncAnalyticsEventPublished("dropped")
			return
		}

		p.logger.Debug("click event published",
			"kind", event.Kind,
			"stream_id", streamID,
		)
		p.metrics.IncAnalyticsEventPublished("success")
	}()
}

// TruncateUserAgent truncates user agent to max 500 chars.
func TruncateUserAgent(ua string) string {
	if len(ua) > 500 {
		return ua[:500]
	}
	return ua
}

// ExtractCountry extracts the country code from the Cloudflare
// CF-IPCountry header. Returns "unknown" when missing or invalid.
func ExtractCountry(cfIPCountry string) string {
	if cfIPCountry != "" && len(cfIPCountry) == 2 {
		return strings.ToUpper(cfIPCountry)
	}
	return UnknownCountry
}
