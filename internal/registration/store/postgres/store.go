// Package postgres persists registrants directly in PostgreSQL for
// deployments that talk to the database rather than its REST gateway.
// Unlike the REST adapter it offers a strongly-consistent conditional quota
// decrement, so the referral processor skips the verify-and-retry dance.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"guestgate/internal/registration/models"
	"guestgate/internal/registration/store"
)

// Schema is the DDL for the registrations table. Applied by deployment
// tooling and by integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS registrations (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	tier TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	nickname TEXT NOT NULL DEFAULT '',
	referred_by TEXT NOT NULL DEFAULT '',
	invitations_remaining INT NOT NULL DEFAULT 0 CHECK (invitations_remaining >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS registrations_email_idx ON registrations (email) WHERE email <> '';
CREATE INDEX IF NOT EXISTS registrations_phone_idx ON registrations (phone) WHERE phone <> '';
`

type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open dials the database and verifies connectivity.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db), nil
}

const selectColumns = "id, email, phone, tier, display_name, nickname, referred_by, invitations_remaining, created_at"

func (s *Store) FindByIdentity(ctx context.Context, email, phone string) (*models.Registrant, error) {
	if email != "" {
		r, err := s.findWhere(ctx, "email = $1", email)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	if phone != "" {
		return s.findWhere(ctx, "phone = $1", phone)
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.Registrant, error) {
	return s.findWhere(ctx, "id = $1", id)
}

func (s *Store) Insert(ctx context.Context, r *models.Registrant) (*models.Registrant, error) {
	stored := *r
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO registrations (id, email, phone, tier, display_name, nickname, referred_by, invitations_remaining, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		stored.ID, stored.Email, stored.Phone, string(stored.Tier),
		stored.DisplayName, stored.Nickname, stored.ReferredBy,
		stored.InvitationsRemaining, stored.CreatedAt,
	)
	if err != nil {
		return nil, unavailable("insert registrant", err)
	}
	return &stored, nil
}

func (s *Store) Update(ctx context.Context, id string, fields models.Update) (*models.Registrant, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.Tier != nil {
		add("tier", string(*fields.Tier))
	}
	if fields.DisplayName != nil {
		add("display_name", *fields.DisplayName)
	}
	if fields.Nickname != nil {
		add("nickname", *fields.Nickname)
	}
	if fields.InvitationsRemaining != nil {
		add("invitations_remaining", *fields.InvitationsRemaining)
	}
	if len(sets) == 0 {
		return s.FindByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE registrations SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), selectColumns)

	r, err := scanRegistrant(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, unavailable("update registrant", err)
	}
	return r, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM registrations WHERE id = $1", id)
	if err != nil {
		return unavailable("delete registrant", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return unavailable("delete registrant", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DecrementInvitations atomically consumes one invitation. The condition in
// the WHERE clause makes the quota check and the decrement a single
// statement, so concurrent referrals cannot oversell. Returns ErrNotFound
// when the host does not exist or has no invitations left.
func (s *Store) DecrementInvitations(ctx context.Context, id string) (int, error) {
	var remaining int
	err := s.db.QueryRowContext(ctx,
		`UPDATE registrations
		 SET invitations_remaining = invitations_remaining - 1
		 WHERE id = $1 AND invitations_remaining > 0
		 RETURNING invitations_remaining`,
		id,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrNotFound
		}
		return 0, unavailable("decrement invitations", err)
	}
	return remaining, nil
}

func (s *Store) findWhere(ctx context.Context, where string, arg any) (*models.Registrant, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE %s", selectColumns, where)
	r, err := scanRegistrant(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, unavailable("find registrant", err)
	}
	return r, nil
}

func scanRegistrant(row *sql.Row) (*models.Registrant, error) {
	var r models.Registrant
	var tier string
	err := row.Scan(&r.ID, &r.Email, &r.Phone, &tier, &r.DisplayName,
		&r.Nickname, &r.ReferredBy, &r.InvitationsRemaining, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Tier = models.TierFromLabel(tier)
	return &r, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", store.ErrStoreUnavailable, op, err)
}
