// Package twilio implements the SMS transport on Twilio's messaging API.
package twilio

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/neoxlab/notify/pkg/notify"
)

var (
	ErrInvalidConfig = errors.New("twilio: invalid config")
	ErrSendFailed    = errors.New("twilio: failed to send sms")
)

// Config holds Twilio transport configuration. Either a From number or a
// messaging service SID must be set.
type Config struct {
	AccountSID          string `env:"TWILIO_ACCOUNT_SID,required"`
	AuthToken           string `env:"TWILIO_AUTH_TOKEN,required"`
	FromNumber          string `env:"TWILIO_FROM_NUMBER"`
	MessagingServiceSID string `env:"TWILIO_MESSAGING_SERVICE_SID"`
}

// Texter sends SMS through Twilio. It implements notify.Texter.
type Texter struct {
	client *twilio.RestClient
	cfg    Config
}

// New creates a Twilio-backed texter, failing fast on incomplete credentials.
func New(cfg Config) (*Texter, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("%w: AccountSID and AuthToken are required", ErrInvalidConfig)
	}
	if cfg.FromNumber == "" && cfg.MessagingServiceSID == "" {
		return nil, fmt.Errorf("%w: FromNumber or MessagingServiceSID is required", ErrInvalidConfig)
	}
	return &Texter{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		cfg: cfg,
	}, nil
}

// SendSMS implements notify.Texter. The returned id is the Twilio message SID.
func (t *Texter) SendSMS(ctx context.Context, msg notify.SMSMessage) (string, error) {
	params := &api.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetBody(msg.Body)
	if t.cfg.MessagingServiceSID != "" {
		params.SetMessagingServiceSid(t.cfg.MessagingServiceSID)
	} else {
		params.SetFrom(t.cfg.FromNumber)
	}

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
