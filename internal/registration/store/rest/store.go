// Package rest adapts a PostgREST-compatible remote record store (the hosted
// Postgres gateway the guest list lives in) to the store port. Every call is
// bounded by a timeout; timeouts, transport failures and non-2xx responses
// all surface as store.ErrStoreUnavailable so callers can degrade.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"guestgate/internal/platform/config"
	"guestgate/internal/registration/models"
	"guestgate/internal/registration/store"
)

type Store struct {
	baseURL string
	key     string
	table   string
	timeout time.Duration
	client  *http.Client
}

// New constructs a REST store from config. The URL is the service root; the
// PostgREST prefix and table name are appended per request.
func New(cfg config.StoreConfig) *Store {
	return &Store{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		key:     cfg.Key,
		table:   cfg.Table,
		timeout: cfg.Timeout,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *Store) FindByIdentity(ctx context.Context, email, phone string) (*models.Registrant, error) {
	if email != "" {
		r, err := s.findOne(ctx, "email", email)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	if phone != "" {
		return s.findOne(ctx, "phone", phone)
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.Registrant, error) {
	return s.findOne(ctx, "id", id)
}

func (s *Store) Insert(ctx context.Context, r *models.Registrant) (*models.Registrant, error) {
	body, err := json.Marshal(toRow(r))
	if err != nil {
		return nil, fmt.Errorf("encode registrant: %w", err)
	}

	rows, err := s.do(ctx, http.MethodPost, url.Values{}, body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert returned no representation", store.ErrStoreUnavailable)
	}
	return rows[0].toRegistrant(), nil
}

func (s *Store) Update(ctx context.Context, id string, fields models.Update) (*models.Registrant, error) {
	patch := map[string]any{}
	if fields.Tier != nil {
		patch["tier"] = string(*fields.Tier)
	}
	if fields.DisplayName != nil {
		patch["display_name"] = *fields.DisplayName
	}
	if fields.Nickname != nil {
		patch["nickname"] = *fields.Nickname
	}
	if fields.InvitationsRemaining != nil {
		patch["invitations_remaining"] = *fields.InvitationsRemaining
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode update: %w", err)
	}

	query := url.Values{"id": {"eq." + id}}
	rows, err := s.do(ctx, http.MethodPatch, query, body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return rows[0].toRegistrant(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	query := url.Values{"id": {"eq." + id}}
	rows, err := s.do(ctx, http.MethodDelete, query, nil)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, column, value string) (*models.Registrant, error) {
	query := url.Values{
		column:   {"eq." + value},
		"select": {"*"},
	}
	rows, err := s.do(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return rows[0].toRegistrant(), nil
}

// do issues one bounded request and decodes the row-array response every
// PostgREST verb produces under Prefer: return=representation.
func (s *Store) do(ctx context.Context, method string, query url.Values, body []byte) ([]row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build store request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s returned %d", store.ErrStoreUnavailable, method, s.table, resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	var rows []row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", store.ErrStoreUnavailable, err)
	}
	return rows, nil
}

// row is the wire representation. The hosted store assigns numeric ids while
// other deployments use uuids, so id-like fields accept both.
type row struct {
	ID                   flexID `json:"id,omitempty"`
	Email                string `json:"email,omitempty"`
	Phone                string `json:"phone,omitempty"`
	Tier                 string `json:"tier,omitempty"`
	DisplayName          string `json:"display_name,omitempty"`
	Nickname             string `json:"nickname,omitempty"`
	ReferredBy           flexID `json:"referred_by,omitempty"`
	InvitationsRemaining int    `json:"invitations_remaining"`
	CreatedAt            string `json:"created_at,omitempty"`
}

func toRow(r *models.Registrant) row {
	out := row{
		Email:                r.Email,
		Phone:                r.Phone,
		Tier:                 string(r.Tier),
		DisplayName:          r.DisplayName,
		Nickname:             r.Nickname,
		ReferredBy:           flexID(r.ReferredBy),
		InvitationsRemaining: r.InvitationsRemaining,
	}
	if !r.CreatedAt.IsZero() {
		out.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func (w row) toRegistrant() *models.Registrant {
	r := &models.Registrant{
		ID:                   string(w.ID),
		Email:                w.Email,
		Phone:                w.Phone,
		Tier:                 models.TierFromLabel(w.Tier),
		DisplayName:          w.DisplayName,
		Nickname:             w.Nickname,
		ReferredBy:           string(w.ReferredBy),
		InvitationsRemaining: w.InvitationsRemaining,
	}
	if w.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
			r.CreatedAt = t
		}
	}
	return r
}

// flexID decodes either a JSON string or a JSON number into a string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}
