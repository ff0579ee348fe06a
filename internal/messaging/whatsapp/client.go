// Package whatsapp implements the outbound message port against the WhatsApp
// Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"guestgate/internal/platform/config"
	dErrors "guestgate/pkg/domainerrors"
)

const defaultBaseURL = "https://graph.facebook.com/v21.0"

// Client sends text messages through the WhatsApp Cloud API.
type Client struct {
	baseURL       string
	token         string
	phoneNumberID string
	httpClient    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New builds a Client from messaging credentials.
func New(cfg config.MessagingConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:       defaultBaseURL,
		token:         cfg.Token,
		phoneNumberID: cfg.PhoneNumberID,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Send delivers a text message to the given number.
func (c *Client) Send(ctx context.Context, to, body string) error {
	msg := textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	msg.Text.Body = body

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeDeliveryFailure, "message delivery failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return dErrors.Wrap(
			fmt.Errorf("provider returned %d: %s", resp.StatusCode, detail),
			dErrors.CodeDeliveryFailure, "message delivery failed")
	}
	return nil
}
