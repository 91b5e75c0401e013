// Package slack implements a chat transport on Slack incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/neoxlab/notify/pkg/notify"
)

var (
	ErrInvalidConfig = errors.New("slack: invalid config")
	ErrSendFailed    = errors.New("slack: failed to send message")
)

// Config holds Slack transport configuration. Channel and Username are
// defaults that per-message options may override.
type Config struct {
	WebhookURL string `env:"SLACK_WEBHOOK_URL,required"`
	Channel    string `env:"SLACK_CHANNEL"`
	Username   string `env:"SLACK_USERNAME"`
}

// Chatter sends chat messages through a Slack incoming webhook. It implements
// notify.Chatter for the "slack" transport.
type Chatter struct {
	cfg    Config
	client *http.Client
}

// ChatterOption configures a Chatter.
type ChatterOption func(*Chatter)

// WithHTTPClient overrides the HTTP client, used by tests to point at a local
// server.
func WithHTTPClient(client *http.Client) ChatterOption {
	return func(c *Chatter) {
		if client != nil {
			c.client = client
		}
	}
}

// New creates a webhook-backed chatter.
func New(cfg Config, opts ...ChatterOption) (*Chatter, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("%w: WebhookURL is required", ErrInvalidConfig)
	}
	c := &Chatter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// webhookPayload is Slack's incoming-webhook wire shape.
type webhookPayload struct {
	Text      string `json:"text"`
	Channel   string `json:"channel,omitempty"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// SendChat implements notify.Chatter. Slack webhooks acknowledge with a bare
// "ok" and assign no message id, so the returned id is always empty.
func (c *Chatter) SendChat(ctx context.Context, msg notify.ChatMessage) (string, error) {
	payload := webhookPayload{
		Text:     msg.Body,
		Channel:  c.cfg.Channel,
		Username: c.cfg.Username,
	}
	if msg.Subject != "" {
		payload.Text = fmt.Sprintf("*%s*\n%s", msg.Subject, msg.Body)
	}
	if msg.Slack != nil {
		if msg.Slack.Channel != "" {
			payload.Channel = msg.Slack.Channel
		}
		payload.IconEmoji = msg.Slack.IconEmoji
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, bytes.TrimSpace(detail))
	}
	return "", nil
}
