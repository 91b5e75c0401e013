package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/neoxlab/notify/pkg/queue"
)

// DeferredEnvelope is the job payload for a deferred dispatch. The channel
// selects the payload shape; Metadata and Context snapshot the original call
// so the outcome produced at delivery time carries the same correlation data.
type DeferredEnvelope struct {
	Channel  string          `json:"channel"`
	Payload  json.RawMessage `json:"payload"`
	Metadata Metadata        `json:"metadata,omitempty"`
	Context  map[string]any  `json:"context,omitempty"`
}

// OutboundEmail wraps a built email for forced-transport queueing, giving
// email its own job name so consumers can subscribe to it separately from
// other channels.
type OutboundEmail struct {
	Email EmailMessage `json:"email"`
}

// Per-channel deferred payloads. They carry the builder INPUTS, not the built
// message: the message is rebuilt at delivery time so path-based attachments
// are read then, not at enqueue time.
type (
	deferredEmailPayload struct {
		Subject string       `json:"subject"`
		Content string       `json:"content"`
		To      string       `json:"to"`
		IsHTML  bool         `json:"isHtml"`
		Options EmailOptions `json:"options"`
	}

	deferredSMSPayload struct {
		Content string `json:"content"`
		To      string `json:"to"`
	}

	deferredChatPayload struct {
		Transport string         `json:"transport"`
		Content   string         `json:"content"`
		Subject   string         `json:"subject,omitempty"`
		Options   map[string]any `json:"options,omitempty"`
	}

	deferredBrowserPayload struct {
		Topic string         `json:"topic"`
		Data  map[string]any `json:"data"`
	}

	deferredPushPayload struct {
		Subscription Subscription   `json:"subscription"`
		Data         map[string]any `json:"data"`
		TTL          *int           `json:"ttl,omitempty"`
	}
)

// DispatchHandlers returns the queue handlers that deliver deferred envelopes
// and forced-transport messages through sender. Register them on every worker
// that consumes notification routes:
//
//	worker.RegisterHandlers(notify.DispatchHandlers(sender)...)
//
// A failed outcome surfaces as a handler error so the queue's retry policy
// applies.
func DispatchHandlers(sender Sender) []queue.Handler {
	return []queue.Handler{
		queue.NewJobHandler(func(ctx context.Context, env DeferredEnvelope) error {
			return deliverDeferred(ctx, sender, env)
		}),
		queue.NewJobHandler(func(ctx context.Context, m OutboundEmail) error {
			return outcomeErr(sender.SendEmail(ctx, m.Email))
		}),
		queue.NewJobHandler(func(ctx context.Context, m SMSMessage) error {
			return outcomeErr(sender.SendSMS(ctx, m))
		}),
		queue.NewJobHandler(func(ctx context.Context, m ChatMessage) error {
			return outcomeErr(sender.SendChat(ctx, m))
		}),
		queue.NewJobHandler(func(ctx context.Context, m BrowserMessage) error {
			return outcomeErr(sender.SendBrowser(ctx, m))
		}),
		queue.NewJobHandler(func(ctx context.Context, m WebPushMessage) error {
			return outcomeErr(sender.SendPush(ctx, m))
		}),
	}
}

// deliverDeferred rebuilds the message from the envelope and sends it. An
// envelope for an unknown channel is dropped without error; retrying it could
// never succeed.
func deliverDeferred(ctx context.Context, sender Sender, env DeferredEnvelope) error {
	switch env.Channel {
	case ChannelEmail:
		var p deferredEmailPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("notify: decode deferred email: %w", err)
		}
		msg := NewEmailMessage(p.Subject, p.Content, p.To, p.IsHTML, p.Options)
		return outcomeErr(sender.SendEmail(ctx, msg))

	case ChannelSMS:
		var p deferredSMSPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("notify: decode deferred sms: %w", err)
		}
		return outcomeErr(sender.SendSMS(ctx, NewSMSMessage(p.Content, p.To)))

	case ChannelChat:
		var p deferredChatPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("notify: decode deferred chat: %w", err)
		}
		msg := NewChatMessage(p.Transport, p.Content, p.Subject, p.Options)
		return outcomeErr(sender.SendChat(ctx, msg))

	case ChannelBrowser:
		var p deferredBrowserPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("notify: decode deferred browser: %w", err)
		}
		return outcomeErr(sender.SendBrowser(ctx, NewBrowserMessage(p.Topic, p.Data)))

	case ChannelPush, ChannelDesktop:
		var p deferredPushPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("notify: decode deferred push: %w", err)
		}
		return outcomeErr(sender.SendPush(ctx, NewWebPushMessage(p.Subscription, p.Data, p.TTL)))
	}
	return nil
}

func outcomeErr(out Outcome) error {
	if out.Status == StatusFailed {
		return errors.New(out.Message)
	}
	return nil
}
