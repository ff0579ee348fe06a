// Package backup appends registration events to a local CSV file, the
// secondary durability path behind the remote store. Rows are per event, not
// per identity: repeated registrations of the same person may appear more
// than once, which is acceptable for a safety net.
package backup

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"guestgate/internal/registration/models"
)

var header = []string{"email", "phone", "tier", "timestamp"}

// Writer serializes appends to the backup file. The file is opened and
// closed per write; the mutex keeps concurrent appends from interleaving.
type Writer struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Writer {
	return &Writer{path: path}
}

// Append writes one registration event row, creating the file with its
// header on first use.
func (w *Writer) Append(r *models.Registrant) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat backup file: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write backup header: %w", err)
		}
	}
	row := []string{r.Email, r.Phone, string(r.Tier), r.CreatedAt.UTC().Format(time.RFC3339)}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write backup row: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush backup row: %w", err)
	}
	return nil
}
