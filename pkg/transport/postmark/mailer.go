// Package postmark implements the email transport on Postmark's
// transactional API.
package postmark

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	pm "github.com/mrz1836/postmark"

	"github.com/neoxlab/notify/pkg/notify"
)

// Mailer sends email through Postmark. It implements notify.Mailer.
type Mailer struct {
	client *pm.Client
	cfg    Config
}

// New creates a Postmark-backed mailer. The server token and default sender
// are required so a misconfigured deployment fails at startup, not at the
// first send.
func New(cfg Config) (*Mailer, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: ServerToken is required", ErrInvalidConfig)
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("%w: FromEmail is required", ErrInvalidConfig)
	}
	return &Mailer{
		client: pm.NewClient(cfg.ServerToken, cfg.AccountToken),
		cfg:    cfg,
	}, nil
}

// SendEmail implements notify.Mailer. The returned id is Postmark's MessageID.
func (m *Mailer) SendEmail(ctx context.Context, msg notify.EmailMessage) (string, error) {
	email := pm.Email{
		From:       m.fromHeader(msg.From),
		To:         msg.To,
		Subject:    msg.Subject,
		TrackOpens: m.cfg.TrackOpens,
	}
	if msg.IsHTML {
		email.HTMLBody = msg.Body
		if m.cfg.TrackOpens {
			email.TrackLinks = "HtmlOnly"
		}
	} else {
		email.TextBody = msg.Body
	}

	for _, part := range msg.Attachments {
		att, err := toAttachment(part, false)
		if err != nil {
			return "", errors.Join(ErrSendFailed, err)
		}
		email.Attachments = append(email.Attachments, att)
	}
	for _, part := range msg.Inline {
		att, err := toAttachment(part, true)
		if err != nil {
			return "", errors.Join(ErrSendFailed, err)
		}
		email.Attachments = append(email.Attachments, att)
	}

	resp, err := m.client.SendEmail(ctx, email)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return "", errors.Join(ErrSendFailed, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return resp.MessageID, nil
}

// fromHeader resolves the From header: the per-message override wins over the
// configured default.
func (m *Mailer) fromHeader(override *notify.Address) string {
	email, name := m.cfg.FromEmail, m.cfg.FromName
	if override != nil && override.Email != "" {
		email, name = override.Email, override.Name
	}
	if name != "" {
		return fmt.Sprintf("%s <%s>", name, email)
	}
	return email
}

// toAttachment converts a normalized email part to Postmark's wire shape.
// Path-based parts are read here, at send time.
func toAttachment(part notify.EmailPart, inline bool) (pm.Attachment, error) {
	content := part.Content
	if part.Path != "" {
		data, err := os.ReadFile(part.Path)
		if err != nil {
			return pm.Attachment{}, fmt.Errorf("read attachment %q: %w", part.Path, err)
		}
		content = data
	}

	att := pm.Attachment{
		Name:        part.Name,
		Content:     base64.StdEncoding.EncodeToString(content),
		ContentType: part.MIME,
	}
	if inline && part.CID != "" {
		att.ContentID = "cid:" + part.CID
	}
	return att, nil
}
