package backup

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestgate/internal/registration/models"
)

func testRegistrant(email string) *models.Registrant {
	return &models.Registrant{
		Email:     email,
		Phone:     "5521998765432",
		Tier:      models.TierRestricted,
		CreatedAt: time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC),
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.csv")
	w := New(path)

	require.NoError(t, w.Append(testRegistrant("a@example.com")))
	require.NoError(t, w.Append(testRegistrant("b@example.com")))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"email", "phone", "tier", "timestamp"}, rows[0])
	assert.Equal(t, "a@example.com", rows[1][0])
	assert.Equal(t, "b@example.com", rows[2][0])
	assert.Equal(t, "2025-11-20T12:00:00Z", rows[1][3])
}

func TestDuplicateEventsAreAcceptable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.csv")
	w := New(path)

	// The backup is per event, not per identity.
	require.NoError(t, w.Append(testRegistrant("same@example.com")))
	require.NoError(t, w.Append(testRegistrant("same@example.com")))

	rows := readRows(t, path)
	assert.Len(t, rows, 3)
}

func TestConcurrentAppendsDoNotCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.csv")
	w := New(path)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Append(testRegistrant("c@example.com")))
		}()
	}
	wg.Wait()

	rows := readRows(t, path)
	require.Len(t, rows, writers+1, "header plus one row per append")
	for _, row := range rows[1:] {
		assert.Len(t, row, 4)
	}
}
