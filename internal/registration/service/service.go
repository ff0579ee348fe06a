// Package service orchestrates registration: identity normalization,
// classification, persistence with a local backup, guest referrals against a
// per-host invitation quota, and outbound invites.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"guestgate/internal/messaging"
	"guestgate/internal/platform/metrics"
	"guestgate/internal/registration/backup"
	"guestgate/internal/registration/classifier"
	"guestgate/internal/registration/identity"
	"guestgate/internal/registration/lock"
	"guestgate/internal/registration/models"
	"guestgate/internal/registration/store"
	dErrors "guestgate/pkg/domainerrors"
	"guestgate/pkg/requestcontext"
)

// Service is the registration orchestrator.
type Service struct {
	store      store.Store
	classifier *classifier.Classifier
	backup     *backup.Writer
	messenger  messaging.Messenger
	locker     lock.Locker
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBackup enables the append-only CSV backup of registration events.
func WithBackup(w *backup.Writer) Option {
	return func(s *Service) {
		s.backup = w
	}
}

// WithMessenger sets the outbound invite sender.
func WithMessenger(m messaging.Messenger) Option {
	return func(s *Service) {
		s.messenger = m
	}
}

// WithLocker sets the per-host referral lock. Defaults to an in-process
// lock; pass the redis locker when running multiple replicas.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// New builds a Service over the given store and classifier.
func New(st store.Store, cls *classifier.Classifier, opts ...Option) *Service {
	s := &Service{
		store:      st,
		classifier: cls,
		locker:     lock.NewMemoryLocker(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyResult is the outcome of an admission check.
type VerifyResult struct {
	Registrant *models.Registrant
	Redirect   string
	Created    bool
}

// Verify normalizes the submitted identity, classifies it and ensures a
// record exists. Replays with the same identity reuse the existing record.
// A store outage degrades to classification-only: the visitor is still
// routed, the record is not persisted.
func (s *Service) Verify(ctx context.Context, email, phone string) (*VerifyResult, error) {
	email = identity.NormalizeEmail(email)
	phone = identity.NormalizePhone(phone)
	if email == "" && phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email or phone is required")
	}

	res, err := s.classifier.Classify(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	if res.Existing != nil {
		return &VerifyResult{
			Registrant: res.Existing,
			Redirect:   res.Existing.Tier.Route(),
		}, nil
	}

	candidate, err := models.NewRegistrant(email, phone, res.Tier, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	record := candidate
	stored, err := s.store.Insert(ctx, candidate)
	switch {
	case err == nil:
		record = stored
		if s.metrics != nil {
			s.metrics.RegistrationsCreated.Inc()
		}
	default:
		s.logger.Error("registration insert failed, routing without a record",
			"email", email, "tier", res.Tier, "error", err)
		if s.metrics != nil {
			s.metrics.StoreFailures.Inc()
		}
	}

	s.appendBackup(record)

	return &VerifyResult{
		Registrant: record,
		Redirect:   record.Tier.Route(),
		Created:    err == nil,
	}, nil
}

// ReferResult reports the host's quota after a referral batch.
type ReferResult struct {
	Remaining int
}

// Refer registers the invitees as guests of the given host, consuming one
// invitation per new guest. Invitees are processed sequentially; the first
// failure stops the batch. A per-host lock serializes concurrent referral
// batches for the same host, so the quota check and its decrement cannot
// interleave.
func (s *Service) Refer(ctx context.Context, hostID string, invitees []models.Invitee) (*ReferResult, error) {
	host, err := s.store.FindByID(ctx, hostID)
	if err != nil {
		return nil, referrerErr(err)
	}
	if !host.IsHost() {
		return nil, dErrors.New(dErrors.CodeValidation, "referrer is not a host")
	}

	release, err := s.locker.Acquire(ctx, hostID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not serialize referral")
	}
	defer release()

	remaining := host.InvitationsRemaining
	for _, invitee := range invitees {
		remaining, err = s.referOne(ctx, host, invitee)
		if err != nil {
			return &ReferResult{Remaining: remaining}, err
		}
	}
	return &ReferResult{Remaining: remaining}, nil
}

func (s *Service) referOne(ctx context.Context, host *models.Registrant, invitee models.Invitee) (int, error) {
	email := identity.NormalizeEmail(invitee.Email)
	phone := identity.NormalizePhone(invitee.Phone)
	if email == "" && phone == "" {
		return host.InvitationsRemaining, dErrors.New(dErrors.CodeValidation, "invitee email or phone is required")
	}

	// An invitee who is already on the list costs nothing.
	if existing, err := s.store.FindByIdentity(ctx, email, phone); err == nil {
		s.logger.Info("invitee already registered, skipping",
			"invitee_id", existing.ID, "host_id", host.ID)
		current, err := s.store.FindByID(ctx, host.ID)
		if err != nil {
			return 0, referrerErr(err)
		}
		return current.InvitationsRemaining, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return 0, storeErr(err, "invitee lookup failed")
	}

	// Re-fetch the quota inside the lock: the value carried into this batch
	// may be stale after earlier invitees.
	current, err := s.store.FindByID(ctx, host.ID)
	if err != nil {
		return 0, referrerErr(err)
	}
	if current.InvitationsRemaining <= 0 {
		if s.metrics != nil {
			s.metrics.QuotaRejections.Inc()
		}
		return 0, dErrors.New(dErrors.CodeQuotaExhausted, "no invitations remaining")
	}

	guest, err := models.NewRegistrant(email, phone, models.TierGuest, requestcontext.Now(ctx))
	if err != nil {
		return current.InvitationsRemaining, err
	}
	guest.DisplayName = invitee.Name
	guest.ReferredBy = host.ID

	stored, err := s.store.Insert(ctx, guest)
	if err != nil {
		return current.InvitationsRemaining, storeErr(err, "guest insert failed")
	}
	s.appendBackup(stored)

	remaining, err := s.decrementQuota(ctx, host.ID, current.InvitationsRemaining)
	if err != nil {
		return current.InvitationsRemaining, err
	}

	if s.metrics != nil {
		s.metrics.ReferralsProcessed.Inc()
	}
	s.sendInvite(host, stored)

	return remaining, nil
}

// decrementQuota consumes one invitation and returns the remaining count.
// Stores with an atomic conditional decrement get it directly; other
// backends get a plain update followed by a verification read, with exactly
// one forced retry if the write did not take.
func (s *Service) decrementQuota(ctx context.Context, hostID string, fetched int) (int, error) {
	if dec, ok := s.store.(store.InvitationDecrementer); ok {
		remaining, err := dec.DecrementInvitations(ctx, hostID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				if s.metrics != nil {
					s.metrics.QuotaRejections.Inc()
				}
				return 0, dErrors.New(dErrors.CodeQuotaExhausted, "no invitations remaining")
			}
			return 0, storeErr(err, "quota decrement failed")
		}
		return remaining, nil
	}

	target := fetched - 1
	update := models.Update{InvitationsRemaining: &target}

	if _, err := s.store.Update(ctx, hostID, update); err != nil {
		return 0, storeErr(err, "quota decrement failed")
	}

	observed, err := s.store.FindByID(ctx, hostID)
	if err != nil {
		return 0, referrerErr(err)
	}
	if observed.InvitationsRemaining == fetched {
		// The write was silently dropped. Force it once and accept whatever
		// the store reports afterwards.
		s.logger.Warn("quota decrement not visible, retrying once",
			"host_id", hostID, "expected", target, "observed", observed.InvitationsRemaining)
		if _, err := s.store.Update(ctx, hostID, update); err != nil {
			return 0, storeErr(err, "quota decrement retry failed")
		}
		observed, err = s.store.FindByID(ctx, hostID)
		if err != nil {
			return 0, referrerErr(err)
		}
	}
	return observed.InvitationsRemaining, nil
}

// RegisterInterest moves a registrant to the pending_interest tier and
// records how they want to be addressed.
func (s *Service) RegisterInterest(ctx context.Context, id, name, nickname string) (*models.Registrant, error) {
	tier := models.TierPendingInterest
	update := models.Update{Tier: &tier}
	if name != "" {
		update.DisplayName = &name
	}
	if nickname != "" {
		update.Nickname = &nickname
	}

	updated, err := s.store.Update(ctx, id, update)
	if err != nil {
		return nil, storeErr(err, "interest update failed")
	}
	return updated, nil
}

// OptOut removes a registrant. A later lookup for the same identity finds
// nothing.
func (s *Service) OptOut(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return storeErr(err, "opt-out failed")
	}
	return nil
}

// Get fetches a registrant by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Registrant, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "registrant lookup failed")
	}
	return r, nil
}

// ProcessInbound handles one inbound text message from the messaging
// provider. When the sender is a host, every phone number in the body
// becomes a referral. Non-host senders and unparseable numbers are ignored;
// the provider only needs an acknowledgement.
func (s *Service) ProcessInbound(ctx context.Context, from, body string) error {
	sender := identity.NormalizePhone(from)
	if sender == "" {
		return nil
	}

	host, err := s.store.FindByIdentity(ctx, "", sender)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Info("inbound message from unknown number ignored", "from", sender)
			return nil
		}
		return storeErr(err, "sender lookup failed")
	}
	if !host.IsHost() {
		s.logger.Info("inbound message from non-host ignored",
			"from", sender, "tier", host.Tier)
		return nil
	}

	numbers := identity.ExtractPhoneNumbers(body)
	invitees := make([]models.Invitee, 0, len(numbers))
	for _, n := range numbers {
		if n == sender {
			continue
		}
		invitees = append(invitees, models.Invitee{Phone: n})
	}
	if len(invitees) == 0 {
		return nil
	}

	if _, err := s.Refer(ctx, host.ID, invitees); err != nil {
		s.logger.Warn("inbound referral failed", "host_id", host.ID, "error", err)
	}
	return nil
}

// sendInvite notifies the new guest. Delivery failures never fail the
// referral; they are logged and counted.
func (s *Service) sendInvite(host, guest *models.Registrant) {
	if s.messenger == nil || guest.Phone == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.messenger.Send(ctx, guest.Phone, inviteBody(host, guest)); err != nil {
		s.logger.Warn("invite delivery failed",
			"guest_id", guest.ID, "host_id", host.ID, "error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.InvitesSent.Inc()
	}
}

func inviteBody(host, guest *models.Registrant) string {
	hostName := host.Nickname
	if hostName == "" {
		hostName = host.DisplayName
	}
	guestName := guest.DisplayName
	if guestName == "" {
		guestName = "Olá"
	}

	if hostName != "" {
		return fmt.Sprintf("%s! Você está na lista de convidados de %s. Apresente este número na entrada.", guestName, hostName)
	}
	return fmt.Sprintf("%s! Você está na lista de convidados. Apresente este número na entrada.", guestName)
}

func (s *Service) appendBackup(r *models.Registrant) {
	if s.backup == nil {
		return
	}
	if err := s.backup.Append(r); err != nil {
		s.logger.Error("backup append failed", "error", err)
	}
}

// referrerErr maps store failures on host lookups: a missing host is the
// caller's mistake, anything else is an availability problem.
func referrerErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "referrer not found")
	}
	return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "record store unavailable")
}

func storeErr(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "registrant not found")
	}
	return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, message)
}
