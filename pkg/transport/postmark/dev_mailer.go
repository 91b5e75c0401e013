package postmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neoxlab/notify/pkg/notify"
)

// DevMailer implements notify.Mailer for local development. It writes each
// email as a body file plus a JSON metadata file instead of calling Postmark.
type DevMailer struct {
	dir string
}

// NewDevMailer creates a mailer writing to dir, which is created on first
// send if missing.
func NewDevMailer(dir string) *DevMailer {
	return &DevMailer{dir: dir}
}

type devEmailMetadata struct {
	Timestamp   string `json:"timestamp"`
	To          string `json:"to"`
	Subject     string `json:"subject"`
	IsHTML      bool   `json:"isHtml"`
	Attachments int    `json:"attachments,omitempty"`
	Inline      int    `json:"inline,omitempty"`
}

// SendEmail implements notify.Mailer. The returned id is a generated UUID so
// downstream code can treat dev sends like real ones.
func (d *DevMailer) SendEmail(ctx context.Context, msg notify.EmailMessage) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("postmark: create dev mail dir: %w", err)
	}

	now := time.Now()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(msg.Subject))

	ext := ".txt"
	if msg.IsHTML {
		ext = ".html"
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+ext), []byte(msg.Body), 0644); err != nil {
		return "", fmt.Errorf("postmark: write dev mail body: %w", err)
	}

	meta, err := json.MarshalIndent(devEmailMetadata{
		Timestamp:   now.Format(time.RFC3339),
		To:          msg.To,
		Subject:     msg.Subject,
		IsHTML:      msg.IsHTML,
		Attachments: len(msg.Attachments),
		Inline:      len(msg.Inline),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("postmark: marshal dev mail metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), meta, 0644); err != nil {
		return "", fmt.Errorf("postmark: write dev mail metadata: %w", err)
	}

	return uuid.NewString(), nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename converts a subject into a safe lowercase filename chunk.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")
	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
