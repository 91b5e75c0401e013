// Package webpush implements the web push transport using VAPID-signed
// requests to browser push services.
package webpush

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	wp "github.com/SherClockHolmes/webpush-go"

	"github.com/neoxlab/notify/pkg/notify"
)

var (
	ErrInvalidConfig = errors.New("webpush: invalid config")
	ErrSendFailed    = errors.New("webpush: failed to send notification")
)

// Config holds VAPID credentials. Subscriber is the contact URI push services
// may use to reach the sender, typically a mailto: address.
type Config struct {
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY,required"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY,required"`
	Subscriber      string `env:"VAPID_SUBSCRIBER,required"`
	DefaultTTL      int    `env:"WEBPUSH_DEFAULT_TTL" envDefault:"30"`
}

// Pusher sends web push notifications. It implements notify.Pusher.
type Pusher struct {
	cfg Config
}

// New creates a VAPID-configured pusher, failing fast on missing keys.
func New(cfg Config) (*Pusher, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("%w: VAPID key pair is required", ErrInvalidConfig)
	}
	if cfg.Subscriber == "" {
		return nil, fmt.Errorf("%w: Subscriber is required", ErrInvalidConfig)
	}
	return &Pusher{cfg: cfg}, nil
}

// SendPush implements notify.Pusher. Push services assign no message id, so
// the returned id is always empty; callers fall back to the endpoint.
func (p *Pusher) SendPush(ctx context.Context, msg notify.WebPushMessage) (string, error) {
	sub := &wp.Subscription{
		Endpoint: msg.Endpoint,
		Keys: wp.Keys{
			P256dh: msg.P256dh,
			Auth:   msg.Auth,
		},
	}

	ttl := p.cfg.DefaultTTL
	if msg.TTL != nil {
		ttl = *msg.TTL
	}

	resp, err := wp.SendNotificationWithContext(ctx, []byte(msg.Payload), sub, &wp.Options{
		Subscriber:      p.cfg.Subscriber,
		VAPIDPublicKey:  p.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: p.cfg.VAPIDPrivateKey,
		TTL:             ttl,
	})
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, bytes.TrimSpace(detail))
	}
	return "", nil
}
