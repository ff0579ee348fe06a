// Package memory provides an in-memory record store for tests and for local
// runs without a configured backend. It deliberately mirrors the remote
// store's plain-update semantics (no conditional decrement) so the service's
// portable quota path gets exercised against it.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"guestgate/internal/registration/models"
	"guestgate/internal/registration/store"
)

type Store struct {
	mu      sync.RWMutex
	records map[string]*models.Registrant
}

func New() *Store {
	return &Store{records: make(map[string]*models.Registrant)}
}

func (s *Store) FindByIdentity(_ context.Context, email, phone string) (*models.Registrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if email != "" {
		for _, r := range s.records {
			if r.Email == email {
				return clone(r), nil
			}
		}
	}
	if phone != "" {
		for _, r := range s.records {
			if r.Phone == phone {
				return clone(r), nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindByID(_ context.Context, id string) (*models.Registrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(r), nil
}

func (s *Store) Insert(_ context.Context, r *models.Registrant) (*models.Registrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(r)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.records[stored.ID] = stored
	return clone(stored), nil
}

func (s *Store) Update(_ context.Context, id string, fields models.Update) (*models.Registrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	fields.Apply(r)
	return clone(r), nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// Count reports the number of stored records. Test helper.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func clone(r *models.Registrant) *models.Registrant {
	c := *r
	return &c
}
