package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultDedupeTTL is the deduplication window, in seconds, applied when a
// dedupe key is present and no explicit TTL was given.
const DefaultDedupeTTL = 600

// TransportSync is the well-known synchronous pseudo-route. Forcing it makes
// the queue gateway deliver in-process, so the facade reports the dispatch as
// sent rather than queued.
const TransportSync = "sync"

// Context carries the cross-cutting policy parameters of one dispatch call:
// correlation, deduplication, deferral, and transport routing. It is
// immutable once constructed.
type Context struct {
	CorrelationID string
	DedupeKey     string
	TTLSeconds    int
	DeferAt       *time.Time
	ViaTransport  string
}

// ContextOption configures a Context during construction.
type ContextOption func(*Context)

// WithCorrelationID sets an explicit correlation id instead of a generated one.
func WithCorrelationID(id string) ContextOption {
	return func(c *Context) {
		if id != "" {
			c.CorrelationID = id
		}
	}
}

// WithDedupeKey sets the deduplication key for this dispatch.
func WithDedupeKey(key string) ContextOption {
	return func(c *Context) {
		c.DedupeKey = key
	}
}

// WithDedupeTTL sets the deduplication window in seconds.
func WithDedupeTTL(seconds int) ContextOption {
	return func(c *Context) {
		if seconds > 0 {
			c.TTLSeconds = seconds
		}
	}
}

// WithDeferAt schedules the notification for an absolute future time.
// Callers are responsible for passing a time that is still in the future;
// see ParseSendAt for the parsing layer that enforces it.
func WithDeferAt(at time.Time) ContextOption {
	return func(c *Context) {
		t := at
		c.DeferAt = &t
	}
}

// WithViaTransport forces routing through the named queue route. The presence
// of a route forces queueing even without deferral; the TransportSync route
// is delivered in-process.
func WithViaTransport(route string) ContextOption {
	return func(c *Context) {
		c.ViaTransport = route
	}
}

// NewContext builds a Context, generating a random v4 correlation id when
// none is supplied.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{}
	for _, opt := range opts {
		opt(c)
	}
	if c.CorrelationID == "" {
		c.CorrelationID = uuid.NewString()
	}
	return c
}

// ContextFor builds a deduplicating Context for the given key with a fresh
// correlation id and the default 600s TTL unless overridden.
func ContextFor(dedupeKey string, opts ...ContextOption) *Context {
	base := []ContextOption{
		WithDedupeKey(dedupeKey),
		WithDedupeTTL(DefaultDedupeTTL),
	}
	return NewContext(append(base, opts...)...)
}

// EffectiveTTL returns the dedup TTL in seconds, falling back to the default
// window when none was set.
func (c *Context) EffectiveTTL() int {
	if c.TTLSeconds > 0 {
		return c.TTLSeconds
	}
	return DefaultDedupeTTL
}

// ToMap returns the serializable snapshot carried inside deferred envelopes.
func (c *Context) ToMap() map[string]any {
	var deferAt any
	if c.DeferAt != nil {
		deferAt = c.DeferAt.Format(time.RFC3339)
	}
	return map[string]any{
		"correlationId": c.CorrelationID,
		"dedupeKey":     nullableString(c.DedupeKey),
		"ttlSeconds":    nullableInt(c.TTLSeconds),
		"deferAt":       deferAt,
		"viaTransport":  nullableString(c.ViaTransport),
	}
}

// MarshalJSON serializes the wire shape
// {correlationId, dedupeKey, ttlSeconds, deferAt, viaTransport} with deferAt
// as RFC 3339 or null.
func (c *Context) MarshalJSON() ([]byte, error) {
	var deferAt *string
	if c.DeferAt != nil {
		s := c.DeferAt.Format(time.RFC3339)
		deferAt = &s
	}
	return json.Marshal(struct {
		CorrelationID string  `json:"correlationId"`
		DedupeKey     *string `json:"dedupeKey"`
		TTLSeconds    *int    `json:"ttlSeconds"`
		DeferAt       *string `json:"deferAt"`
		ViaTransport  *string `json:"viaTransport"`
	}{
		CorrelationID: c.CorrelationID,
		DedupeKey:     optString(c.DedupeKey),
		TTLSeconds:    optInt(c.TTLSeconds),
		DeferAt:       deferAt,
		ViaTransport:  optString(c.ViaTransport),
	})
}

func optInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
