// Package natspub implements the browser pub/sub transport and the outcome
// status mirror on NATS subjects.
package natspub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/neoxlab/notify/pkg/notify"
)

var (
	ErrInvalidConfig = errors.New("natspub: invalid config")
	ErrPublishFailed = errors.New("natspub: failed to publish")
	ErrNATSNotReady  = errors.New("natspub: nats connection not established")
	ErrEmptyTopic    = errors.New("natspub: empty topic")
)

const defaultSubjectRoot = "notify"

// Config holds NATS transport configuration.
type Config struct {
	URL           string `env:"NATS_URL,required" envDefault:"nats://localhost:4222"`
	SubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"notify"`
	StatusSubject string `env:"NATS_STATUS_SUBJECT" envDefault:"notify.status"`
	ClientName    string `env:"NATS_CLIENT_NAME" envDefault:"notify"`
}

// Connect dials the configured NATS server with reconnect enabled.
func Connect(cfg Config) (*nats.Conn, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidConfig)
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.Join(ErrNATSNotReady, err)
	}
	return conn, nil
}

// Publisher publishes browser updates on per-topic subjects. It implements
// notify.BrowserPublisher.
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

// NewPublisher wraps an established connection. prefix defaults to "notify"
// when empty.
func NewPublisher(conn *nats.Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = defaultSubjectRoot
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// PublishBrowser implements notify.BrowserPublisher. The topic maps onto a
// NATS subject under "<prefix>.browser."; slashes and colons become subject
// token separators. NATS publishes carry no broker-assigned id, so the
// returned id is always empty.
func (p *Publisher) PublishBrowser(ctx context.Context, msg notify.BrowserMessage) (string, error) {
	if msg.Topic == "" {
		return "", ErrEmptyTopic
	}
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return "", errors.Join(ErrPublishFailed, err)
	}
	subject := p.prefix + ".browser." + subjectToken(msg.Topic)
	if err := p.conn.Publish(subject, data); err != nil {
		return "", errors.Join(ErrPublishFailed, err)
	}
	return "", nil
}

// StatusPublisher mirrors finalized outcomes to a NATS subject. It implements
// notify.StatusPublisher.
type StatusPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewStatusPublisher wraps an established connection. subject defaults to
// "notify.status" when empty.
func NewStatusPublisher(conn *nats.Conn, subject string) *StatusPublisher {
	if subject == "" {
		subject = defaultSubjectRoot + ".status"
	}
	return &StatusPublisher{conn: conn, subject: subject}
}

// Publish implements notify.StatusPublisher.
func (s *StatusPublisher) Publish(ctx context.Context, out notify.Outcome) error {
	data, err := json.Marshal(out)
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// subjectToken rewrites a topic path into a valid NATS subject fragment:
// path and namespace separators become token dots, whitespace becomes
// underscores.
func subjectToken(topic string) string {
	token := strings.TrimSpace(topic)
	token = strings.Trim(token, "/")
	token = strings.NewReplacer("/", ".", ":", ".", " ", "_").Replace(token)
	for strings.Contains(token, "..") {
		token = strings.ReplaceAll(token, "..", ".")
	}
	return token
}
