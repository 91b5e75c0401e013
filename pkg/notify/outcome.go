package notify

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Status is the uniform delivery state of an Outcome.
type Status string

const (
	StatusSent   Status = "sent"
	StatusQueued Status = "queued"
	StatusFailed Status = "failed"
)

// Channel names understood by the facade.
const (
	ChannelEmail   = "email"
	ChannelSMS     = "sms"
	ChannelChat    = "chat"
	ChannelBrowser = "browser"
	ChannelPush    = "push"
	ChannelDesktop = "desktop"
)

// Outcome is the immutable result of one dispatch attempt. Construction goes
// through Sent, Queued, or Failed; "modification" via WithMetadata or
// WithContext yields a new instance with a fresh UUID.
type Outcome struct {
	UUID     string
	Channel  string
	Status   Status
	Message  string
	ID       string
	Metadata Metadata
}

func newOutcome(channel string, status Status, message, id string, meta Metadata) Outcome {
	return Outcome{
		UUID:     uuid.NewString(),
		Channel:  channel,
		Status:   status,
		Message:  message,
		ID:       id,
		Metadata: meta.Merge(nil),
	}
}

// Sent reports a successful synchronous delivery. id is the
// transport-assigned identifier when the transport produces one.
func Sent(channel, id, message string, meta Metadata) Outcome {
	return newOutcome(channel, StatusSent, message, id, meta)
}

// Queued reports that the notification was accepted for later delivery
// (deferred, routed through a forced transport, or short-circuited by dedup).
func Queued(channel, id, message string, meta Metadata) Outcome {
	return newOutcome(channel, StatusQueued, message, id, meta)
}

// Failed reports a delivery failure. message carries the diagnostic detail as
// free text; there is no structured error-code taxonomy on purpose.
func Failed(channel, message string, id string, meta Metadata) Outcome {
	return newOutcome(channel, StatusFailed, message, id, meta)
}

// OK reports whether the outcome is a success from the caller's perspective.
func (o Outcome) OK() bool {
	return o.Status == StatusSent || o.Status == StatusQueued
}

// WithMetadata returns a new Outcome with extra shallow-merged into the
// metadata bag. Same-named keys are overwritten.
func (o Outcome) WithMetadata(extra Metadata) Outcome {
	return newOutcome(o.Channel, o.Status, o.Message, o.ID, o.Metadata.Merge(extra))
}

// WithContext returns a new Outcome with the context's correlation id and
// dedupe key stamped into metadata, overwriting existing values.
func (o Outcome) WithContext(ctx *Context) Outcome {
	if ctx == nil {
		return o
	}
	meta := o.Metadata.
		Set("correlationId", ctx.CorrelationID).
		Set("dedupeKey", nullableString(ctx.DedupeKey))
	return newOutcome(o.Channel, o.Status, o.Message, o.ID, meta)
}

// MarshalJSON serializes the flat wire shape
// {uuid, channel, status, message, id, metadata}. Empty message and id
// serialize as null.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UUID     string   `json:"uuid"`
		Channel  string   `json:"channel"`
		Status   Status   `json:"status"`
		Message  *string  `json:"message"`
		ID       *string  `json:"id"`
		Metadata Metadata `json:"metadata"`
	}{
		UUID:     o.UUID,
		Channel:  o.Channel,
		Status:   o.Status,
		Message:  optString(o.Message),
		ID:       optString(o.ID),
		Metadata: o.Metadata,
	})
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
