package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neoxlab/notify/pkg/queue"
)

// ErrSenderNil is returned by NewNotifier when no sender is supplied.
var ErrSenderNil = errors.New("notify: sender is required")

// Notifier is the dispatch facade. Every Notify* method runs the same gate
// sequence over its channel:
//
//  1. dedup: a context dedupe key already remembered short-circuits to a
//     queued "noop" outcome;
//  2. template (email only): a template option renders the body and forces
//     HTML;
//  3. deferral: a context defer-at enqueues a DeferredEnvelope with the
//     remaining delay instead of sending;
//  4. forced transport: a context via-transport enqueues the built message on
//     that route; the "sync" route reports sent, any other reports queued;
//  5. direct send through the Sender.
//
// All paths, including panics, converge on a finalized Outcome carrying the
// call metadata and context stamp, mirrored best-effort to the configured
// logger and status publisher. Notify* methods never return errors and never
// panic.
type Notifier struct {
	sender   Sender
	dedupe   DedupeRepository
	gateway  QueueGateway
	renderer TemplateRenderer
	logger   NotificationLogger
	status   StatusPublisher
	now      func() time.Time
}

// NotifierOption configures optional collaborators of a Notifier.
type NotifierOption func(*Notifier)

// WithDedupe wires the deduplication repository. Without it the dedup gate is
// inert and dedupe keys are ignored.
func WithDedupe(repo DedupeRepository) NotifierOption {
	return func(n *Notifier) { n.dedupe = repo }
}

// WithQueueGateway wires the queue used for deferral and forced transport.
// Without it those gates produce failed outcomes.
func WithQueueGateway(gw QueueGateway) NotifierOption {
	return func(n *Notifier) { n.gateway = gw }
}

// WithTemplateRenderer wires the email template renderer.
func WithTemplateRenderer(r TemplateRenderer) NotifierOption {
	return func(n *Notifier) { n.renderer = r }
}

// WithNotificationLogger wires the best-effort outcome logger.
func WithNotificationLogger(l NotificationLogger) NotifierOption {
	return func(n *Notifier) { n.logger = l }
}

// WithStatusPublisher wires the best-effort outcome mirror.
func WithStatusPublisher(p StatusPublisher) NotifierOption {
	return func(n *Notifier) { n.status = p }
}

// WithClock overrides the time source, used by tests to pin deferral delays.
func WithClock(now func() time.Time) NotifierOption {
	return func(n *Notifier) {
		if now != nil {
			n.now = now
		}
	}
}

// NewNotifier builds the facade around sender. All other collaborators are
// optional and default to disabled.
func NewNotifier(sender Sender, opts ...NotifierOption) (*Notifier, error) {
	if sender == nil {
		return nil, ErrSenderNil
	}
	n := &Notifier{
		sender: sender,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// NotifyEmail dispatches an email. meta and dctx may be nil.
func (n *Notifier) NotifyEmail(ctx context.Context, subject, body, to string, isHTML bool, opts EmailOptions, meta Metadata, dctx *Context) (out Outcome) {
	defer n.recoverFailed(ctx, &out, ChannelEmail, meta, dctx)

	if hit, done := n.gateDedupe(ctx, ChannelEmail, meta, dctx); done {
		return hit
	}

	if opts.Template != "" {
		if n.renderer == nil {
			return n.finalize(ctx, Failed(ChannelEmail, "Template renderer not available", "", nil), meta, dctx)
		}
		rendered, err := n.renderer.Render(opts.Template, opts.TemplateVars)
		if err != nil {
			return n.finalize(ctx, Failed(ChannelEmail, err.Error(), "", nil), meta, dctx)
		}
		body = rendered
		isHTML = true
	}

	if deferred(dctx) {
		payload := deferredEmailPayload{
			Subject: subject,
			Content: body,
			To:      to,
			IsHTML:  isHTML,
			Options: opts,
		}
		return n.gateDeferral(ctx, ChannelEmail, payload, meta, dctx, true)
	}

	if forced(dctx) {
		msg := NewEmailMessage(subject, body, to, isHTML, opts)
		return n.gateForcedTransport(ctx, ChannelEmail, OutboundEmail{Email: msg}, meta, dctx)
	}

	msg := NewEmailMessage(subject, body, to, isHTML, opts)
	return n.finalize(ctx, n.sender.SendEmail(ctx, msg), meta, dctx)
}

// NotifySMS dispatches an SMS. meta and dctx may be nil.
func (n *Notifier) NotifySMS(ctx context.Context, body, to string, meta Metadata, dctx *Context) (out Outcome) {
	defer n.recoverFailed(ctx, &out, ChannelSMS, meta, dctx)

	if hit, done := n.gateDedupe(ctx, ChannelSMS, meta, dctx); done {
		return hit
	}
	if deferred(dctx) {
		return n.gateDeferral(ctx, ChannelSMS, deferredSMSPayload{Content: body, To: to}, meta, dctx, true)
	}
	if forced(dctx) {
		return n.gateForcedTransport(ctx, ChannelSMS, NewSMSMessage(body, to), meta, dctx)
	}
	return n.finalize(ctx, n.sender.SendSMS(ctx, NewSMSMessage(body, to)), meta, dctx)
}

// NotifyChat dispatches a chat message to the backend named by transport.
// opts carries backend-specific options; meta and dctx may be nil.
func (n *Notifier) NotifyChat(ctx context.Context, transport, body, subject string, opts map[string]any, meta Metadata, dctx *Context) (out Outcome) {
	defer n.recoverFailed(ctx, &out, ChannelChat, meta, dctx)

	if hit, done := n.gateDedupe(ctx, ChannelChat, meta, dctx); done {
		return hit
	}
	if deferred(dctx) {
		payload := deferredChatPayload{
			Transport: transport,
			Content:   body,
			Subject:   subject,
			Options:   opts,
		}
		return n.gateDeferral(ctx, ChannelChat, payload, meta, dctx, true)
	}
	if forced(dctx) {
		return n.gateForcedTransport(ctx, ChannelChat, NewChatMessage(transport, body, subject, opts), meta, dctx)
	}
	return n.finalize(ctx, n.sender.SendChat(ctx, NewChatMessage(transport, body, subject, opts)), meta, dctx)
}

// NotifyBrowser publishes a data payload to browser subscribers of topic.
// meta and dctx may be nil.
func (n *Notifier) NotifyBrowser(ctx context.Context, topic string, data map[string]any, meta Metadata, dctx *Context) (out Outcome) {
	defer n.recoverFailed(ctx, &out, ChannelBrowser, meta, dctx)

	if hit, done := n.gateDedupe(ctx, ChannelBrowser, meta, dctx); done {
		return hit
	}
	if deferred(dctx) {
		return n.gateDeferral(ctx, ChannelBrowser, deferredBrowserPayload{Topic: topic, Data: data}, meta, dctx, true)
	}
	if forced(dctx) {
		return n.gateForcedTransport(ctx, ChannelBrowser, NewBrowserMessage(topic, data), meta, dctx)
	}
	return n.finalize(ctx, n.sender.SendBrowser(ctx, NewBrowserMessage(topic, data)), meta, dctx)
}

// NotifyPush dispatches a web push notification to one subscription. Forced
// transport does not apply to push; a via-transport directive only affects
// push when combined with deferral, where it routes the envelope. meta and
// dctx may be nil.
func (n *Notifier) NotifyPush(ctx context.Context, sub Subscription, data map[string]any, ttl *int, meta Metadata, dctx *Context) (out Outcome) {
	defer n.recoverFailed(ctx, &out, ChannelPush, meta, dctx)

	if hit, done := n.gateDedupe(ctx, ChannelPush, meta, dctx); done {
		return hit
	}
	if err := sub.Validate(); err != nil {
		return n.finalize(ctx, Failed(ChannelPush, err.Error(), "", nil), meta, dctx)
	}
	if deferred(dctx) {
		payload := deferredPushPayload{Subscription: sub, Data: data, TTL: ttl}
		return n.gateDeferral(ctx, ChannelPush, payload, meta, dctx, false)
	}
	return n.finalize(ctx, n.sender.SendPush(ctx, NewWebPushMessage(sub, data, ttl)), meta, dctx)
}

// NotifyDesktop is a pure alias of NotifyPush: desktop notifications are web
// push deliveries and report the push channel.
func (n *Notifier) NotifyDesktop(ctx context.Context, sub Subscription, data map[string]any, ttl *int, meta Metadata, dctx *Context) Outcome {
	return n.NotifyPush(ctx, sub, data, ttl, meta, dctx)
}

// gateDedupe runs the dedup gate. done is true when the dispatch must stop
// here, either as a duplicate hit or because the repository failed.
func (n *Notifier) gateDedupe(ctx context.Context, channel string, meta Metadata, dctx *Context) (Outcome, bool) {
	if n.dedupe == nil || dctx == nil || dctx.DedupeKey == "" {
		return Outcome{}, false
	}

	key := dctx.DedupeKey
	ttl := dctx.EffectiveTTL()

	if atomicRepo, ok := n.dedupe.(AtomicDedupeRepository); ok {
		inserted, err := atomicRepo.RememberIfAbsent(ctx, key, ttl)
		if err != nil {
			return n.finalize(ctx, Failed(channel, err.Error(), "", nil), meta, dctx), true
		}
		if !inserted {
			return n.dedupeHit(ctx, channel, meta, dctx), true
		}
		return Outcome{}, false
	}

	exists, err := n.dedupe.Exists(ctx, key)
	if err != nil {
		return n.finalize(ctx, Failed(channel, err.Error(), "", nil), meta, dctx), true
	}
	if exists {
		return n.dedupeHit(ctx, channel, meta, dctx), true
	}
	if err := n.dedupe.Remember(ctx, key, ttl); err != nil {
		return n.finalize(ctx, Failed(channel, err.Error(), "", nil), meta, dctx), true
	}
	return Outcome{}, false
}

func (n *Notifier) dedupeHit(ctx context.Context, channel string, meta Metadata, dctx *Context) Outcome {
	hit := Queued(channel, "", "noop", Metadata{{Key: "reason", Value: "dedup-hit"}})
	return n.finalize(ctx, hit, meta, dctx)
}

// gateDeferral enqueues a DeferredEnvelope delayed until the context's
// defer-at instant. includeRoute controls whether a via-transport directive
// also routes the envelope and is echoed in the outcome metadata.
func (n *Notifier) gateDeferral(ctx context.Context, channel string, payload any, meta Metadata, dctx *Context, includeRoute bool) Outcome {
	if n.gateway == nil {
		return n.finalize(ctx, Failed(channel, "Deferred send requires a queue. Queue gateway not available", "", nil), meta, dctx)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return n.finalize(ctx, Failed(channel, fmt.Sprintf("encode deferred payload: %v", err), "", nil), meta, dctx)
	}
	env := DeferredEnvelope{
		Channel:  channel,
		Payload:  raw,
		Metadata: meta,
		Context:  dctx.ToMap(),
	}

	delay := dctx.DeferAt.Sub(n.now())
	if delay < 0 {
		delay = 0
	}
	opts := []queue.EnqueueOption{queue.WithDelay(delay)}
	route := ""
	if includeRoute && dctx.ViaTransport != "" {
		route = dctx.ViaTransport
		opts = append(opts, queue.WithRoute(route))
	}

	if err := n.gateway.Enqueue(ctx, env, opts...); err != nil {
		return n.finalize(ctx, Failed(channel, err.Error(), "", nil), meta, dctx)
	}

	qmeta := Metadata{{Key: "deferAt", Value: dctx.DeferAt.Format(time.RFC3339)}}
	if route != "" {
		qmeta = append(qmeta, Entry{Key: "transport", Value: route})
	}
	return n.finalize(ctx, Queued(channel, "", "scheduled", qmeta), meta, dctx)
}

// gateForcedTransport enqueues the built message on the context's forced
// route. The sync pseudo-route is delivered in-process by the gateway, so the
// outcome reports sent rather than queued.
func (n *Notifier) gateForcedTransport(ctx context.Context, channel string, payload any, meta Metadata, dctx *Context) Outcome {
	if n.gateway == nil {
		return n.finalize(ctx, Failed(channel, "Forcing transport requires a queue. Queue gateway not available", "", nil), meta, dctx)
	}

	route := dctx.ViaTransport
	if err := n.gateway.Enqueue(ctx, payload, queue.WithRoute(route)); err != nil {
		return n.finalize(ctx, Failed(channel, err.Error(), "", nil), meta, dctx)
	}
	if route == TransportSync {
		return n.finalize(ctx, Sent(channel, "", "", nil), meta, dctx)
	}
	qmeta := Metadata{{Key: "transport", Value: route}}
	return n.finalize(ctx, Queued(channel, "", "forced-transport", qmeta), meta, dctx)
}

// finalize merges the call metadata, stamps the context, and mirrors the
// outcome to the logger and status publisher. Mirroring is best-effort: each
// hook runs in its own recovery scope and cannot affect the outcome.
func (n *Notifier) finalize(ctx context.Context, out Outcome, meta Metadata, dctx *Context) Outcome {
	if len(meta) > 0 {
		out = out.WithMetadata(meta)
	}
	if dctx != nil {
		out = out.WithContext(dctx)
	}

	if n.logger != nil {
		func() {
			defer func() { _ = recover() }()
			n.logger.Log(ctx, out)
		}()
	}
	if n.status != nil {
		func() {
			defer func() { _ = recover() }()
			_ = n.status.Publish(ctx, out)
		}()
	}
	return out
}

// recoverFailed is the top-level panic barrier of every Notify* method.
func (n *Notifier) recoverFailed(ctx context.Context, out *Outcome, channel string, meta Metadata, dctx *Context) {
	if r := recover(); r != nil {
		*out = n.finalize(ctx, Failed(channel, fmt.Sprintf("dispatch panic: %v", r), "", nil), meta, dctx)
	}
}

func deferred(dctx *Context) bool {
	return dctx != nil && dctx.DeferAt != nil
}

func forced(dctx *Context) bool {
	return dctx != nil && dctx.ViaTransport != ""
}
