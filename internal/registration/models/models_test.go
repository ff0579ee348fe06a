package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "guestgate/pkg/domainerrors"
)

func TestNewRegistrant(t *testing.T) {
	now := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)

	t.Run("requires an identity field", func(t *testing.T) {
		_, err := NewRegistrant("", "", TierRestricted, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("email alone is a valid identity", func(t *testing.T) {
		r, err := NewRegistrant("fred@gmail.com", "", TierRestricted, now)
		require.NoError(t, err)
		assert.Equal(t, "fred@gmail.com", r.Email)
		assert.Equal(t, now, r.CreatedAt)
		assert.Zero(t, r.InvitationsRemaining)
	})

	t.Run("phone alone is a valid identity", func(t *testing.T) {
		r, err := NewRegistrant("", "5521998765432", TierGuest, now)
		require.NoError(t, err)
		assert.Equal(t, "5521998765432", r.Phone)
	})

	t.Run("rejects unknown tier", func(t *testing.T) {
		_, err := NewRegistrant("fred@gmail.com", "", Tier("vip"), now)
		assert.Error(t, err)
	})
}

func TestTierFromLabel(t *testing.T) {
	cases := []struct {
		label string
		want  Tier
	}{
		{"host", TierHost},
		{"Sócio", TierHost},
		{"SOCIO", TierHost},
		{"Founder", TierHost},
		{"guest", TierGuest},
		{"Convidado", TierGuest},
		{"interessado", TierPendingInterest},
		{"pending_interest", TierPendingInterest},
		{"aguardando", TierRestricted},
		{"", TierRestricted},
		{"anything else", TierRestricted},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFromLabel(tc.label), "label %q", tc.label)
	}
}

func TestTierRoute(t *testing.T) {
	assert.Equal(t, "/host", TierHost.Route())
	assert.Equal(t, "/guest", TierGuest.Route())
	assert.Equal(t, "/restricted", TierRestricted.Route())
	assert.Equal(t, "/restricted", TierPendingInterest.Route())
}

func TestUpdateApply(t *testing.T) {
	r := &Registrant{Tier: TierHost, InvitationsRemaining: 3, DisplayName: "Fred"}

	remaining := 2
	Update{InvitationsRemaining: &remaining}.Apply(r)

	assert.Equal(t, 2, r.InvitationsRemaining)
	assert.Equal(t, TierHost, r.Tier, "unset fields stay untouched")
	assert.Equal(t, "Fred", r.DisplayName)
}
