// Package webhook parses inbound WhatsApp Cloud API notifications. The
// provider wraps messages several layers deep; this package flattens them
// into plain sender/body pairs.
package webhook

import (
	"encoding/json"
	"io"

	dErrors "guestgate/pkg/domainerrors"
)

// Message is one inbound text message.
type Message struct {
	From string
	Body string
}

type payload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Parse extracts the text messages from a webhook notification body.
// Notifications with no messages (status updates, non-text media) yield an
// empty slice, not an error.
func Parse(r io.Reader) ([]Message, error) {
	var p payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "malformed webhook payload")
	}

	var out []Message
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "" && msg.Type != "text" {
					continue
				}
				if msg.Text.Body == "" {
					continue
				}
				out = append(out, Message{From: msg.From, Body: msg.Text.Body})
			}
		}
	}
	return out, nil
}
