package service

import (
	"context"
	"errors"
	"time"

	"github.com/tautlabs/taut/internal/analytics"
	"github.com/tautlabs/taut/internal/auth"
	"github.com/tautlabs/taut/internal/cache"
	"github.com/tautlabs/taut/internal/metrics"
	"github.com/tautlabs/taut/internal/model"
	"github.com/tautlabs/taut/internal/repository"
	"github.com/tautlabs/taut/internal/slug"
)

// Resolution errors.
var (
	// ErrInvalidPassword is returned when a password submission does not
	// match the link's password.
	ErrInvalidPassword = errors.New("invalid password")
)

// OutcomeKind classifies what a public slug resolved to.
type OutcomeKind int

const (
	// OutcomeNotFound means no short link or published microsite matched.
	OutcomeNotFound OutcomeKind = iota
	// OutcomeRedirect means the visitor should be redirected to Destination.
	OutcomeRedirect
	// OutcomeExpired means a short link matched but is past its expiry.
	// Terminal: no password prompt, no click recorded.
	OutcomeExpired
	// OutcomePasswordChallenge means a protected short link matched and the
	// visitor must submit the password before the destination is revealed.
	OutcomePasswordChallenge
	// OutcomeMicrosite means a published microsite matched.
	OutcomeMicrosite
	// OutcomeInvalidLink means a password was submitted for a link that
	// vanished or lost its password since the challenge was issued.
	OutcomeInvalidLink
)

// metricLabel returns the outcome label used for instrumentation.
func (k OutcomeKind) metricLabel() string {
	switch k {
	case OutcomeRedirect:
		return "redirect"
	case OutcomeExpired:
		return "expired"
	case OutcomePasswordChallenge:
		return "password_challenge"
	case OutcomeMicrosite:
		return "microsite"
	case OutcomeInvalidLink:
		return "invalid_link"
	default:
		return "not_found"
	}
}

// Outcome is the result of resolving a public slug.
// Fields beyond Kind are populated per kind: Destination for redirects,
// ShortCode for password challenges, Microsite/Links/Owner for microsites.
type Outcome struct {
	Kind        OutcomeKind
	Destination string
	ShortCode   string
	Microsite   *model.Microsite
	Links       []*model.MicrositeLink
	Owner       *model.User
}

// Visit carries per-request metadata recorded with click events.
type Visit struct {
	UserAgent string
	Country   string
}

// Resolver dispatches public slugs to short links and microsites.
// Short links take precedence over microsites on slug collision.
type Resolver struct {
	store   ResolverStore
	cache   LinkCache
	events  EventPublisher
	metrics metrics.Recorder
}

// NewResolver creates a resolver. linkCache and events may be nil, which
// disables caching and click recording respectively.
func NewResolver(store ResolverStore, linkCache LinkCache, events EventPublisher, recorder metrics.Recorder) *Resolver {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Resolver{
		store:   store,
		cache:   linkCache,
		events:  events,
		metrics: recorder,
	}
}

// Resolve determines what a public slug points to.
// This is the hot path - cache-first for short links, then DB, then the
// microsite fallback. A plain redirect records a click before returning;
// expired links and password challenges record nothing.
func (r *Resolver) Resolve(ctx context.Context, rawSlug string, visit Visit) (*Outcome, error) {
	start := time.Now()
	defer func() {
		r.metrics.ObserveResolveDuration(time.Since(start))
	}()

	if slug.IsReserved(rawSlug) {
		return r.finish(&Outcome{Kind: OutcomeNotFound}), nil
	}

	outcome, err := r.resolveShortLink(ctx, rawSlug, visit)
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return r.finish(outcome), nil
	}

	return r.resolveMicrosite(ctx, rawSlug, visit)
}

// resolveShortLink checks the short link keyspace. Returns nil when no
// short link claims the slug and the microsite fallback should run.
func (r *Resolver) resolveShortLink(ctx context.Context, shortCode string, visit Visit) (*Outcome, error) {
	if r.cache != nil {
		cached, err := r.cache.GetShortLink(ctx, shortCode)
		if err == nil {
			r.metrics.IncResolveCacheHit()
			link, protected := cached.ToShortLink(shortCode)
			return r.evaluateShortLink(ctx, link, protected, visit), nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			r.metrics.IncResolveCacheMiss()
			// A negative entry means the slug is known not to be a short
			// link; skip the DB read and go straight to the microsite path.
			if isNegative, _ := r.cache.IsNegativelyCached(ctx, shortCode); isNegative {
				return nil, nil
			}
		}
		// Redis errors fall through to the DB.
	}

	link, err := r.store.GetShortLinkByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrShortLinkNotFound) {
			if r.cache != nil {
				_ = r.cache.SetNegativeCache(ctx, shortCode)
			}
			return nil, nil
		}
		return nil, err
	}

	if r.cache != nil {
		_ = r.cache.SetShortLink(ctx, shortCode, link)
	}

	return r.evaluateShortLink(ctx, link, link.IsProtected(), visit), nil
}

// evaluateShortLink applies the expiry and password gates.
func (r *Resolver) evaluateShortLink(ctx context.Context, link *model.ShortLink, protected bool, visit Visit) *Outcome {
	if link.IsExpired() {
		if r.cache != nil {
			_ = r.cache.DeleteShortLink(ctx, link.ShortCode)
		}
		return &Outcome{Kind: OutcomeExpired, ShortCode: link.ShortCode}
	}

	if protected {
		return &Outcome{Kind: OutcomePasswordChallenge, ShortCode: link.ShortCode}
	}

	r.recordShortLinkClick(link, visit)
	return &Outcome{
		Kind:        OutcomeRedirect,
		Destination: link.Destination,
		ShortCode:   link.ShortCode,
	}
}

// resolveMicrosite looks up a published microsite for the slug.
func (r *Resolver) resolveMicrosite(ctx context.Context, rawSlug string, visit Visit) (*Outcome, error) {
	site, links, owner, err := r.store.GetPublishedMicrositeBySlug(ctx, rawSlug)
	if err != nil {
		if errors.Is(err, repository.ErrMicrositeNotFound) {
			return r.finish(&Outcome{Kind: OutcomeNotFound}), nil
		}
		return nil, err
	}

	r.recordMicrositeView(site, visit)
	return r.finish(&Outcome{
		Kind:      OutcomeMicrosite,
		Microsite: site,
		Links:     links,
		Owner:     owner,
	}), nil
}

// VerifyPassword checks a password submission against a protected short
// link. The link is re-fetched from the store on every attempt; the hash
// is never served from cache. A link that vanished or lost its password
// since the challenge was issued resolves to InvalidLink.
func (r *Resolver) VerifyPassword(ctx context.Context, shortCode, password string, visit Visit) (*Outcome, error) {
	link, err := r.store.GetShortLinkByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrShortLinkNotFound) {
			return r.finish(&Outcome{Kind: OutcomeInvalidLink, ShortCode: shortCode}), nil
		}
		return nil, err
	}

	if !link.IsProtected() {
		return r.finish(&Outcome{Kind: OutcomeInvalidLink, ShortCode: shortCode}), nil
	}

	if link.IsExpired() {
		return r.finish(&Outcome{Kind: OutcomeExpired, ShortCode: shortCode}), nil
	}

	ok, err := auth.VerifyPassword(password, link.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidPassword
	}

	r.recordShortLinkClick(link, visit)
	return r.finish(&Outcome{
		Kind:        OutcomeRedirect,
		Destination: link.Destination,
		ShortCode:   shortCode,
	}), nil
}

// ResolveMicrositeLink resolves a microsite link click-through.
// Records a click attributed to the link, then redirects to its URL.
// Inactive links resolve to not-found.
func (r *Resolver) ResolveMicrositeLink(ctx context.Context, linkID string, visit Visit) (*Outcome, error) {
	link, err := r.store.GetMicrositeLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrMicrositeLinkNotFound) {
			return r.finish(&Outcome{Kind: OutcomeNotFound}), nil
		}
		return nil, err
	}

	if !link.Active {
		return r.finish(&Outcome{Kind: OutcomeNotFound}), nil
	}

	r.recordMicrositeLinkClick(link, visit)
	return r.finish(&Outcome{
		Kind:        OutcomeRedirect,
		Destination: link.URL,
	}), nil
}

// finish records the outcome metric and returns the outcome unchanged.
func (r *Resolver) finish(outcome *Outcome) *Outcome {
	r.metrics.IncResolveOutcome(outcome.Kind.metricLabel())
	return outcome
}

func (r *Resolver) recordShortLinkClick(link *model.ShortLink, visit Visit) {
	if r.events == nil {
		return
	}
	r.events.PublishAsync(analytics.ClickEventPayload{
		Kind:        analytics.KindShortLink,
		ShortLinkID: link.ID,
		ShortCode:   link.ShortCode,
		UserAgent:   visit.UserAgent,
		Country:     visit.Country,
		OccurredAt:  time.Now().UnixMilli(),
	})
}

func (r *Resolver) recordMicrositeView(site *model.Microsite, visit Visit) {
	if r.events == nil {
		return
	}
	r.events.PublishAsync(analytics.ClickEventPayload{
		Kind:        analytics.KindMicrositeView,
		MicrositeID: site.ID,
		UserAgent:   visit.UserAgent,
		Country:     visit.Country,
		OccurredAt:  time.Now().UnixMilli(),
	})
}

func (r *Resolver) recordMicrositeLinkClick(link *model.MicrositeLink, visit Visit) {
	if r.events == nil {
		return
	}
	r.events.PublishAsync(analytics.ClickEventPayload{
		Kind:        analytics.KindMicrositeLink,
		MicrositeID: link.MicrositeID,
		LinkID:      link.ID,
		UserAgent:   visit.UserAgent,
		Country:     visit.Country,
		OccurredAt:  time.Now().UnixMilli(),
	})
}
