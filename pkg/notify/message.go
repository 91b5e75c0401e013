package notify

// Address is an email sender identity.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Attachment is the caller-facing union for one email attachment or inline
// resource. Exactly one of Path, Content, or Data should be set:
//
//   - Path: a filesystem path; the transport reads it at send time.
//   - Content: raw binary content.
//   - Data: string content, base64-decoded when it is valid base64 and used
//     verbatim otherwise.
//
// Name, MIME, and CID override the derived values.
type Attachment struct {
	Path    string `json:"path,omitempty"`
	Content []byte `json:"content,omitempty"`
	Data    string `json:"data,omitempty"`
	Name    string `json:"name,omitempty"`
	MIME    string `json:"mime,omitempty"`
	CID     string `json:"cid,omitempty"`
}

// EmailPart is a normalized attachment or inline resource on an EmailMessage.
// Either Path or Content is set, never both.
type EmailPart struct {
	Path    string `json:"path,omitempty"`
	Content []byte `json:"content,omitempty"`
	Name    string `json:"name"`
	MIME    string `json:"mime"`
	CID     string `json:"cid,omitempty"`
}

// EmailOptions are the optional inputs of the email builder.
type EmailOptions struct {
	From         *Address       `json:"from,omitempty"`
	Attachments  []Attachment   `json:"attachments,omitempty"`
	Inline       []Attachment   `json:"inline,omitempty"`
	Template     string         `json:"template,omitempty"`
	TemplateVars map[string]any `json:"templateVars,omitempty"`
}

// EmailMessage is the transport-ready email built per dispatch.
type EmailMessage struct {
	To          string      `json:"to"`
	Subject     string      `json:"subject"`
	Body        string      `json:"body"`
	IsHTML      bool        `json:"isHtml"`
	From        *Address    `json:"from,omitempty"`
	Attachments []EmailPart `json:"attachments,omitempty"`
	Inline      []EmailPart `json:"inline,omitempty"`
}

// SMSMessage is the transport-ready SMS built per dispatch.
type SMSMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// SlackOptions are the Slack-specific chat options the builder understands.
type SlackOptions struct {
	Channel   string `json:"channel,omitempty"`
	IconEmoji string `json:"iconEmoji,omitempty"`
}

// TelegramOptions are the Telegram-specific chat options the builder
// understands.
type TelegramOptions struct {
	ChatID                string `json:"chatId,omitempty"`
	ParseMode             string `json:"parseMode,omitempty"`
	DisableWebPagePreview bool   `json:"disableWebPagePreview,omitempty"`
}

// ChatMessage is the transport-ready chat message built per dispatch. The
// Transport field names the backend ("slack", "telegram", ...) and at most
// one of the option blocks is populated for it.
type ChatMessage struct {
	Transport string           `json:"transport"`
	Subject   string           `json:"subject,omitempty"`
	Body      string           `json:"body"`
	Slack     *SlackOptions    `json:"slack,omitempty"`
	Telegram  *TelegramOptions `json:"telegram,omitempty"`
}

// BrowserMessage is a pub/sub update targeted at browser subscribers of a
// topic.
type BrowserMessage struct {
	Topic string         `json:"topic"`
	Data  map[string]any `json:"data"`
}

// WebPushMessage is the transport-ready web push notification. Payload is the
// pre-serialized JSON body delivered to the service worker.
type WebPushMessage struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
	Payload  string `json:"payload"`
	TTL      *int   `json:"ttl,omitempty"`
}
