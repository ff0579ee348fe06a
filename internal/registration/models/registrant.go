package models

import (
	"time"

	dErrors "guestgate/pkg/domainerrors"
)

// Registrant is the aggregate root for a person on the guest list.
//
// Invariants:
//   - At least one of Email/Phone is present (the identity pair)
//   - InvitationsRemaining is never negative
//   - Identity is unique across the store: a match on either field means
//     "this is the same person", and creation never duplicates an identity
//
// The uniqueness invariant is enforced at the service layer (lookup before
// insert) rather than by the store, because the remote store offers no
// conditional insert.
type Registrant struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	Tier                 Tier      `json:"tier"`
	DisplayName          string    `json:"display_name,omitempty"`
	Nickname             string    `json:"nickname,omitempty"`
	ReferredBy           string    `json:"referred_by,omitempty"`
	InvitationsRemaining int       `json:"invitations_remaining"`
	CreatedAt            time.Time `json:"created_at"`
}

// NewRegistrant constructs a Registrant, validating invariants. Email and
// phone are expected to be already normalized.
func NewRegistrant(email, phone string, tier Tier, now time.Time) (*Registrant, error) {
	if email == "" && phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email or phone is required")
	}
	if !tier.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid tier")
	}
	return &Registrant{
		Email:     email,
		Phone:     phone,
		Tier:      tier,
		CreatedAt: now,
	}, nil
}

// IsHost reports whether this registrant may refer guests.
func (r *Registrant) IsHost() bool {
	return r.Tier == TierHost
}

// Update carries partial-update fields. Nil pointers leave the stored value
// untouched.
type Update struct {
	Tier                 *Tier   `json:"tier,omitempty"`
	DisplayName          *string `json:"display_name,omitempty"`
	Nickname             *string `json:"nickname,omitempty"`
	InvitationsRemaining *int    `json:"invitations_remaining,omitempty"`
}

// Apply copies the set fields onto r.
func (u Update) Apply(r *Registrant) {
	if u.Tier != nil {
		r.Tier = *u.Tier
	}
	if u.DisplayName != nil {
		r.DisplayName = *u.DisplayName
	}
	if u.Nickname != nil {
		r.Nickname = *u.Nickname
	}
	if u.InvitationsRemaining != nil {
		r.InvitationsRemaining = *u.InvitationsRemaining
	}
}

// Invitee is one referral target submitted by a host.
type Invitee struct {
	Name  string
	Phone string
	Email string
}
