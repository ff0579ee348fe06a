// Package handler exposes the admission gate over HTTP: the visitor-facing
// pages, the JSON referral API and the messaging provider webhook.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"guestgate/internal/messaging/webhook"
	"guestgate/internal/platform/httputil"
	"guestgate/internal/registration/models"
	"guestgate/internal/registration/service"
	dErrors "guestgate/pkg/domainerrors"
	"guestgate/pkg/requestcontext"
)

// Service defines the registration operations the handler depends on.
type Service interface {
	Verify(ctx context.Context, email, phone string) (*service.VerifyResult, error)
	Refer(ctx context.Context, hostID string, invitees []models.Invitee) (*service.ReferResult, error)
	RegisterInterest(ctx context.Context, id, name, nickname string) (*models.Registrant, error)
	OptOut(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Registrant, error)
	ProcessInbound(ctx context.Context, from, body string) error
}

// Handler wires registration endpoints to the registration service.
type Handler struct {
	service     Service
	logger      *slog.Logger
	verifyToken string
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithWebhookVerifyToken enables the provider's webhook subscription
// handshake on GET /webhook.
func WithWebhookVerifyToken(token string) Option {
	return func(h *Handler) {
		h.verifyToken = token
	}
}

// New constructs a registration handler.
func New(service Service, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts all registration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleEntry)
	r.Post("/verify", h.HandleVerify)
	r.Get("/host", h.HandleTierPage(models.TierHost))
	r.Get("/guest", h.HandleTierPage(models.TierGuest))
	r.Get("/restricted", h.HandleTierPage(models.TierRestricted))
	r.Post("/referrals", h.HandleRefer)
	r.Get("/registrants/{id}", h.HandleGet)
	r.Get("/opt-out", h.HandleOptOut)
	r.Post("/interest", h.HandleInterest)
	r.Get("/webhook", h.HandleWebhookVerify)
	r.Post("/webhook", h.HandleWebhook)
}

// HandleVerify handles the entry form submission and routes the visitor to
// their tier page.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid form body"))
		return
	}
	req := verifyRequest{
		Email: r.PostFormValue("email"),
		Phone: r.PostFormValue("phone"),
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Verify(ctx, req.Email, req.Phone)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "visitor verified",
		"request_id", requestcontext.RequestID(ctx),
		"tier", result.Registrant.Tier,
		"created", result.Created,
	)

	target := result.Redirect
	if result.Registrant.ID != "" {
		target += "?id=" + result.Registrant.ID
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleRefer handles POST /referrals.
func (h *Handler) HandleRefer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := decodeJSON[referralRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Refer(ctx, req.ReferrerID, []models.Invitee{{
		Name:  req.InviteeName,
		Phone: req.InviteePhone,
		Email: req.InviteeEmail,
	}})
	if err != nil {
		h.logger.ErrorContext(ctx, "referral failed",
			"request_id", requestcontext.RequestID(ctx),
			"referrer_id", req.ReferrerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, referralResponse{
		OK:                   true,
		RemainingInvitations: result.Remaining,
	})
}

// HandleGet handles GET /registrants/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	registrant, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRegistrant(registrant))
}

// HandleOptOut handles GET /opt-out?id= and renders a confirmation page.
func (h *Handler) HandleOptOut(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "id is required"))
		return
	}

	if err := h.service.OptOut(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.renderPage(w, optOutPage)
}

// HandleInterest handles POST /interest.
func (h *Handler) HandleInterest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[interestRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	registrant, err := h.service.RegisterInterest(r.Context(), req.ID, req.Name, req.Nickname)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRegistrant(registrant))
}

// HandleWebhookVerify answers the provider's subscription handshake.
func (h *Handler) HandleWebhookVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if h.verifyToken == "" ||
		q.Get("hub.mode") != "subscribe" ||
		q.Get("hub.verify_token") != h.verifyToken {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "verification failed"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(q.Get("hub.challenge")))
}

// HandleWebhook handles inbound provider notifications. The provider
// retries on non-2xx, so processing failures are logged and acknowledged.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	msgs, err := webhook.Parse(r.Body)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	for _, msg := range msgs {
		if err := h.service.ProcessInbound(ctx, msg.From, msg.Body); err != nil {
			h.logger.ErrorContext(ctx, "inbound message processing failed",
				"request_id", requestcontext.RequestID(ctx),
				"from", msg.From,
				"error", err,
			)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
