package notify

import (
	"context"
	"fmt"
)

// Sender performs the actual transport call for each channel. Every
// implementation upholds one contract: it never panics past its boundary and
// never returns anything but an Outcome — transport failures become failed
// outcomes with the failure text as the message.
type Sender interface {
	SendEmail(ctx context.Context, msg EmailMessage) Outcome
	SendSMS(ctx context.Context, msg SMSMessage) Outcome
	SendChat(ctx context.Context, msg ChatMessage) Outcome
	SendBrowser(ctx context.Context, msg BrowserMessage) Outcome
	SendPush(ctx context.Context, msg WebPushMessage) Outcome
}

// Per-channel transport capabilities. Each returns the transport-assigned
// identifier when the provider produces one, or "" otherwise.
type (
	// Mailer delivers email.
	Mailer interface {
		SendEmail(ctx context.Context, msg EmailMessage) (string, error)
	}

	// Texter delivers SMS.
	Texter interface {
		SendSMS(ctx context.Context, msg SMSMessage) (string, error)
	}

	// Chatter delivers chat messages for one backend.
	Chatter interface {
		SendChat(ctx context.Context, msg ChatMessage) (string, error)
	}

	// BrowserPublisher publishes browser updates on a pub/sub topic.
	BrowserPublisher interface {
		PublishBrowser(ctx context.Context, msg BrowserMessage) (string, error)
	}

	// Pusher delivers web push notifications.
	Pusher interface {
		SendPush(ctx context.Context, msg WebPushMessage) (string, error)
	}
)

// TransportSender is the standard Sender: a composite over optional
// per-channel transports. A channel whose transport is not configured
// degrades to a failed outcome naming the missing capability, never an error
// or panic.
type TransportSender struct {
	mailer  Mailer
	texter  Texter
	chatter Chatter
	browser BrowserPublisher
	pusher  Pusher
}

// TransportSenderOption wires one transport capability into a TransportSender.
type TransportSenderOption func(*TransportSender)

// WithMailer wires the email transport.
func WithMailer(m Mailer) TransportSenderOption {
	return func(s *TransportSender) { s.mailer = m }
}

// WithTexter wires the SMS transport.
func WithTexter(t Texter) TransportSenderOption {
	return func(s *TransportSender) { s.texter = t }
}

// WithChatter wires the chat transport; use a ChatMux to serve multiple
// backends.
func WithChatter(c Chatter) TransportSenderOption {
	return func(s *TransportSender) { s.chatter = c }
}

// WithBrowserPublisher wires the browser pub/sub transport.
func WithBrowserPublisher(b BrowserPublisher) TransportSenderOption {
	return func(s *TransportSender) { s.browser = b }
}

// WithPusher wires the web push transport.
func WithPusher(p Pusher) TransportSenderOption {
	return func(s *TransportSender) { s.pusher = p }
}

// NewTransportSender builds a Sender from the configured transports. All
// transports are optional.
func NewTransportSender(opts ...TransportSenderOption) *TransportSender {
	s := &TransportSender{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TransportSender) SendEmail(ctx context.Context, msg EmailMessage) (out Outcome) {
	defer recoverOutcome(&out, ChannelEmail)
	if s.mailer == nil {
		return Failed(ChannelEmail, "Mailer service not available", "", nil)
	}
	id, err := s.mailer.SendEmail(ctx, msg)
	if err != nil {
		return Failed(ChannelEmail, err.Error(), "", nil)
	}
	return Sent(ChannelEmail, id, "", nil)
}

func (s *TransportSender) SendSMS(ctx context.Context, msg SMSMessage) (out Outcome) {
	defer recoverOutcome(&out, ChannelSMS)
	if s.texter == nil {
		return Failed(ChannelSMS, "Texter service not available", "", nil)
	}
	id, err := s.texter.SendSMS(ctx, msg)
	if err != nil {
		return Failed(ChannelSMS, err.Error(), "", nil)
	}
	return Sent(ChannelSMS, id, "", nil)
}

func (s *TransportSender) SendChat(ctx context.Context, msg ChatMessage) (out Outcome) {
	defer recoverOutcome(&out, ChannelChat)
	if s.chatter == nil {
		return Failed(ChannelChat, "Chatter service not available", "", nil)
	}
	id, err := s.chatter.SendChat(ctx, msg)
	if err != nil {
		return Failed(ChannelChat, err.Error(), "", nil)
	}
	return Sent(ChannelChat, id, "", nil)
}

func (s *TransportSender) SendBrowser(ctx context.Context, msg BrowserMessage) (out Outcome) {
	defer recoverOutcome(&out, ChannelBrowser)
	if s.browser == nil {
		return Failed(ChannelBrowser, "Browser hub not available", "", nil)
	}
	id, err := s.browser.PublishBrowser(ctx, msg)
	if err != nil {
		return Failed(ChannelBrowser, err.Error(), "", nil)
	}
	return Sent(ChannelBrowser, id, "", nil)
}

func (s *TransportSender) SendPush(ctx context.Context, msg WebPushMessage) (out Outcome) {
	defer recoverOutcome(&out, ChannelPush)
	if s.pusher == nil {
		return Failed(ChannelPush, "WebPush service not available", "", nil)
	}
	id, err := s.pusher.SendPush(ctx, msg)
	if err != nil {
		return Failed(ChannelPush, err.Error(), "", nil)
	}
	if id == "" {
		// Push providers rarely assign an id; the endpoint is the stable
		// fallback identifier.
		id = msg.Endpoint
	}
	return Sent(ChannelPush, id, "", nil)
}

// recoverOutcome converts a transport panic into a failed outcome so the
// never-panics contract holds even over misbehaving SDKs.
func recoverOutcome(out *Outcome, channel string) {
	if r := recover(); r != nil {
		*out = Failed(channel, fmt.Sprintf("transport panic: %v", r), "", nil)
	}
}
