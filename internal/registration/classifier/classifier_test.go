package classifier

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestgate/internal/platform/config"
	"guestgate/internal/registration/models"
	"guestgate/internal/registration/store"
	"guestgate/internal/registration/store/memory"
)

func testAllowlist() config.AllowlistConfig {
	return config.AllowlistConfig{
		HostEmails:  []string{"founder@example.com"},
		GuestEmails: []string{"friend@example.com"},
	}
}

// failingStore simulates a store outage.
type failingStore struct {
	store.Store
}

func (failingStore) FindByIdentity(ctx context.Context, email, phone string) (*models.Registrant, error) {
	return nil, fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable)
}

func TestClassifyStoreRecordWins(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()

	_, err := mem.Insert(ctx, &models.Registrant{
		Email: "founder@example.com",
		Tier:  models.TierRestricted,
	})
	require.NoError(t, err)

	// A store record at restricted outranks the host allowlist entry.
	c := New(mem, testAllowlist())
	res, err := c.Classify(ctx, "founder@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.TierRestricted, res.Tier)
	require.NotNil(t, res.Existing)
	assert.Equal(t, "founder@example.com", res.Existing.Email)
}

func TestClassifyAllowlist(t *testing.T) {
	ctx := context.Background()
	c := New(memory.New(), testAllowlist())

	tests := []struct {
		email string
		want  models.Tier
	}{
		{"founder@example.com", models.TierHost},
		{"friend@example.com", models.TierGuest},
		{"stranger@example.com", models.TierRestricted},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			res, err := c.Classify(ctx, tt.email, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Tier)
			assert.Nil(t, res.Existing)
		})
	}
}

func TestClassifyUnknownPhoneOnlyIsRestricted(t *testing.T) {
	ctx := context.Background()
	c := New(memory.New(), testAllowlist())

	res, err := c.Classify(ctx, "", "5521998765432")
	require.NoError(t, err)
	assert.Equal(t, models.TierRestricted, res.Tier)
}

func TestClassifyDegradesOnStoreOutage(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{}, testAllowlist())

	// Allowlisted identities keep their tier through an outage.
	res, err := c.Classify(ctx, "founder@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.TierHost, res.Tier)

	// Unknown identities land at restricted instead of erroring.
	res, err = c.Classify(ctx, "stranger@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.TierRestricted, res.Tier)
}

func TestClassifyNilStoreUsesAllowlistOnly(t *testing.T) {
	ctx := context.Background()
	c := New(nil, testAllowlist())

	res, err := c.Classify(ctx, "friend@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.TierGuest, res.Tier)
}
