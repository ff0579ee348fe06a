// Package store defines the record store port the registration service
// depends on, plus the failure sentinels every backend maps onto.
package store

import (
	"context"
	"errors"

	"guestgate/internal/registration/models"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("registrant not found")

// ErrStoreUnavailable is returned when the backing store cannot be reached
// or errors transiently. Callers must degrade, never crash: the classifier
// falls back to the static allowlist and the orchestrator routes the visitor
// through at the restricted tier.
var ErrStoreUnavailable = errors.New("record store unavailable")

// Store is the record store port.
//
// FindByIdentity matches on email first, then phone; either field matching
// means "this is the same person". Insert returns the stored record with its
// assigned identifier. Update is partial and returns the post-update record.
type Store interface {
	FindByIdentity(ctx context.Context, email, phone string) (*models.Registrant, error)
	FindByID(ctx context.Context, id string) (*models.Registrant, error)
	Insert(ctx context.Context, r *models.Registrant) (*models.Registrant, error)
	Update(ctx context.Context, id string, fields models.Update) (*models.Registrant, error)
	Delete(ctx context.Context, id string) error
}

// InvitationDecrementer is an optional store capability: an atomic,
// conditional quota decrement. Backends with strongly-consistent updates
// (direct SQL) implement it; the referral processor prefers it over the
// read/update/verify dance it otherwise runs against eventually-consistent
// backends. Returns the post-decrement value, or ErrNotFound when the
// host's quota is already zero or the host does not exist.
type InvitationDecrementer interface {
	DecrementInvitations(ctx context.Context, id string) (int, error)
}
