// Package classifier decides the admission tier for an identity. Precedence:
// an existing store record wins, then the static email allowlist, then the
// restricted default. The allowlist doubles as the degraded-mode source when
// the store is unreachable.
package classifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"guestgate/internal/platform/config"
	"guestgate/internal/platform/metrics"
	"guestgate/internal/registration/models"
	"guestgate/internal/registration/store"
)

// Result is a classification outcome. Existing is non-nil when the identity
// already has a record; Tier is always set.
type Result struct {
	Existing *models.Registrant
	Tier     models.Tier
}

// Classifier resolves identities to tiers.
type Classifier struct {
	store   store.Store
	hosts   map[string]struct{}
	guests  map[string]struct{}
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Classifier.
type Option func(*Classifier)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Classifier) {
		c.metrics = m
	}
}

// New builds a Classifier over the given store and allowlist. The store may
// be nil, in which case only the allowlist and the restricted default apply.
func New(st store.Store, allow config.AllowlistConfig, opts ...Option) *Classifier {
	c := &Classifier{
		store:  st,
		hosts:  toSet(allow.HostEmails),
		guests: toSet(allow.GuestEmails),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify resolves the tier for an already-normalized identity. Store
// failures degrade to the allowlist rather than surfacing: a store outage
// must never lock verified people out of the door.
func (c *Classifier) Classify(ctx context.Context, email, phone string) (Result, error) {
	if c.store != nil {
		existing, err := c.store.FindByIdentity(ctx, email, phone)
		switch {
		case err == nil:
			return Result{Existing: existing, Tier: existing.Tier}, nil
		case errors.Is(err, store.ErrNotFound):
			// Unknown identity, fall through to the allowlist.
		default:
			c.logger.Warn("store lookup failed, classifying from allowlist",
				"error", err)
			if c.metrics != nil {
				c.metrics.StoreFailures.Inc()
				c.metrics.FallbackClassifications.Inc()
			}
		}
	}

	return Result{Tier: c.allowlistTier(email)}, nil
}

func (c *Classifier) allowlistTier(email string) models.Tier {
	key := strings.ToLower(email)
	if _, ok := c.hosts[key]; ok {
		return models.TierHost
	}
	if _, ok := c.guests[key]; ok {
		return models.TierGuest
	}
	return models.TierRestricted
}

func toSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		set[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return set
}
