package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestgate/internal/registration/models"
	"guestgate/internal/registration/store"
)

func seed(t *testing.T, s *Store, email, phone string, tier models.Tier) *models.Registrant {
	t.Helper()
	r, err := models.NewRegistrant(email, phone, tier, time.Now())
	require.NoError(t, err)
	stored, err := s.Insert(context.Background(), r)
	require.NoError(t, err)
	return stored
}

func TestFindByIdentity(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s, "fred@gmail.com", "5521998765432", models.TierHost)

	t.Run("matches on email", func(t *testing.T) {
		r, err := s.FindByIdentity(ctx, "fred@gmail.com", "")
		require.NoError(t, err)
		assert.Equal(t, models.TierHost, r.Tier)
	})

	t.Run("matches on phone when email misses", func(t *testing.T) {
		r, err := s.FindByIdentity(ctx, "other@gmail.com", "5521998765432")
		require.NoError(t, err)
		assert.Equal(t, "fred@gmail.com", r.Email)
	})

	t.Run("miss returns ErrNotFound", func(t *testing.T) {
		_, err := s.FindByIdentity(ctx, "nobody@gmail.com", "5500000000000")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestInsertAssignsID(t *testing.T) {
	s := New()
	stored := seed(t, s, "fred@gmail.com", "", models.TierRestricted)
	assert.NotEmpty(t, stored.ID)

	found, err := s.FindByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, found.ID)
}

func TestUpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	s := New()
	stored := seed(t, s, "fred@gmail.com", "", models.TierHost)

	remaining := 5
	updated, err := s.Update(ctx, stored.ID, models.Update{InvitationsRemaining: &remaining})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.InvitationsRemaining)
	assert.Equal(t, models.TierHost, updated.Tier)

	_, err = s.Update(ctx, "missing", models.Update{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	stored := seed(t, s, "fred@gmail.com", "5521998765432", models.TierGuest)

	require.NoError(t, s.Delete(ctx, stored.ID))

	_, err := s.FindByIdentity(ctx, "fred@gmail.com", "5521998765432")
	assert.ErrorIs(t, err, store.ErrNotFound, "former identity must not resolve after delete")

	assert.ErrorIs(t, s.Delete(ctx, stored.ID), store.ErrNotFound)
}

func TestReadsDoNotAliasStoredRecords(t *testing.T) {
	ctx := context.Background()
	s := New()
	stored := seed(t, s, "fred@gmail.com", "", models.TierHost)

	r, err := s.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	r.InvitationsRemaining = 99

	again, err := s.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Zero(t, again.InvitationsRemaining)
}
