package notify

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const fallbackMIME = "application/octet-stream"

// NewEmailMessage builds a transport-ready email from normalized inputs.
// Attachments and inline resources are resolved per the rules on Attachment;
// items that resolve to nothing are dropped.
func NewEmailMessage(subject, body, to string, isHTML bool, opts EmailOptions) EmailMessage {
	msg := EmailMessage{
		To:      to,
		Subject: subject,
		Body:    body,
		IsHTML:  isHTML,
		From:    opts.From,
	}
	for _, item := range opts.Attachments {
		if part, ok := resolveAttachment(item, false); ok {
			msg.Attachments = append(msg.Attachments, part)
		}
	}
	for _, item := range opts.Inline {
		if part, ok := resolveAttachment(item, true); ok {
			msg.Inline = append(msg.Inline, part)
		}
	}
	return msg
}

// NewSMSMessage builds a transport-ready SMS.
func NewSMSMessage(body, to string) SMSMessage {
	return SMSMessage{To: to, Body: body}
}

// NewChatMessage builds a transport-ready chat message, mapping the small set
// of recognized options onto the backend named by transport. Unrecognized
// option keys are silently dropped; this minimal mapping is a documented
// limitation, not a defect.
func NewChatMessage(transport, body, subject string, opts map[string]any) ChatMessage {
	msg := ChatMessage{
		Transport: transport,
		Subject:   subject,
		Body:      body,
	}
	switch transport {
	case "slack":
		slack := &SlackOptions{}
		if v, ok := opts["channel"]; ok {
			slack.Channel = coerceString(v)
		}
		if v, ok := opts["iconEmoji"]; ok {
			slack.IconEmoji = coerceString(v)
		}
		msg.Slack = slack
	case "telegram":
		tg := &TelegramOptions{}
		if v, ok := opts["chatId"]; ok {
			tg.ChatID = coerceString(v)
		}
		if v, ok := opts["parseMode"]; ok {
			tg.ParseMode = coerceString(v)
		}
		if v, ok := opts["disableWebPagePreview"]; ok {
			tg.DisableWebPagePreview = coerceBool(v)
		}
		msg.Telegram = tg
	}
	return msg
}

// NewBrowserMessage builds a pub/sub update for browser subscribers.
func NewBrowserMessage(topic string, data map[string]any) BrowserMessage {
	return BrowserMessage{Topic: topic, Data: data}
}

// NewWebPushMessage builds a transport-ready web push notification. The data
// map is serialized once here; a value that cannot be serialized degrades to
// an empty JSON object rather than failing the dispatch.
func NewWebPushMessage(sub Subscription, data map[string]any, ttl *int) WebPushMessage {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	return WebPushMessage{
		Endpoint: sub.Endpoint,
		P256dh:   sub.Keys.P256dh,
		Auth:     sub.Keys.Auth,
		Payload:  string(payload),
		TTL:      ttl,
	}
}

// resolveAttachment normalizes one attachment input. Inline items always end
// up with a content id, derived from the filename stem when not explicit.
func resolveAttachment(item Attachment, inline bool) (EmailPart, bool) {
	if item.Path != "" {
		name := item.Name
		if name == "" {
			name = filepath.Base(item.Path)
			if name == "." || name == string(filepath.Separator) {
				name = "attachment.bin"
			}
		}
		part := EmailPart{
			Path: item.Path,
			Name: name,
			MIME: item.MIME,
		}
		if part.MIME == "" {
			part.MIME = mimeByName(name)
		}
		if inline {
			part.CID = inlineCID(item.CID, name)
		}
		return part, true
	}

	content := item.Content
	if len(content) == 0 && item.Data != "" {
		if decoded, err := base64.StdEncoding.DecodeString(item.Data); err == nil {
			content = decoded
		} else {
			content = []byte(item.Data)
		}
	}
	if len(content) == 0 {
		return EmailPart{}, false
	}

	name := item.Name
	if name == "" {
		name = "attachment.bin"
	}
	part := EmailPart{
		Content: content,
		Name:    name,
		MIME:    item.MIME,
	}
	if part.MIME == "" {
		part.MIME = mimeByName(name)
		if part.MIME == fallbackMIME {
			part.MIME = mimetype.Detect(content).String()
		}
	}
	if inline {
		part.CID = inlineCID(item.CID, name)
	}
	return part, true
}

// mimeByName infers a MIME type from a file extension, defaulting to
// application/octet-stream.
func mimeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return fallbackMIME
	}
	mt := mime.TypeByExtension(ext)
	if mt == "" {
		return fallbackMIME
	}
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// inlineCID picks the content id for an inline part: the explicit override,
// else the filename stem, else a generated one.
func inlineCID(explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem != "" {
		return stem
	}
	return "cid-" + uuid.NewString()
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return t != "" && t != "0"
		}
		return b
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}
