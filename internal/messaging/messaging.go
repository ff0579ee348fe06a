// Package messaging defines the outbound message port. Invite delivery is
// best-effort everywhere it is used: a referral that cannot notify the guest
// is still a referral.
package messaging

import (
	"context"
	"log/slog"
)

// Messenger sends a text message to a phone number in E.164 digits form.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

// LogMessenger logs messages instead of delivering them. It stands in when
// no provider credentials are configured, keeping the rest of the pipeline
// unchanged.
type LogMessenger struct {
	logger *slog.Logger
}

func NewLogMessenger(logger *slog.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

func (m *LogMessenger) Send(_ context.Context, to, body string) error {
	m.logger.Info("messaging not configured, dropping message", "to", to, "body", body)
	return nil
}
