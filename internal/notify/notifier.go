// Package notify pushes urgent and escalated complaints to an external channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Severity of an alert.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Notifier delivers alerts.
type Notifier interface {
	Notify(ctx context.Context, msg Alert) error
}

// Alert is one message for the RPF desk.
type Alert struct {
	Title    string
	Text     string
	Severity string
}

// Nop drops every alert.
type Nop struct{}

func (Nop) Notify(context.Context, Alert) error { return nil }

// Webhook posts Slack-compatible {"text": ...} payloads.
type Webhook struct {
	url    string
	client *http.Client
}

// New returns a Webhook notifier, or Nop when url is empty.
func New(url string) Notifier {
	if url == "" {
		return Nop{}
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (w *Webhook) Notify(ctx context.Context, msg Alert) error {
	body, err := json.Marshal(map[string]any{"text": format(msg)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook notification failed: status %d", resp.StatusCode)
	}
	return nil
}

func format(msg Alert) string {
	emoji := ":information_source:"
	switch msg.Severity {
	case SeverityWarning:
		emoji = ":warning:"
	case SeverityCritical:
		emoji = ":rotating_light:"
	}
	if msg.Title != "" {
		return emoji + " *" + msg.Title + "*\n" + msg.Text
	}
	return emoji + " " + msg.Text
}
