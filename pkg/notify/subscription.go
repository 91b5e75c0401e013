package notify

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Subscription errors.
var (
	ErrInvalidSubscription = errors.New("notify: invalid web push subscription")
)

// SubscriptionKeys are the client encryption keys of a web push subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is the standard web push subscription exchanged with browsers:
// {endpoint, keys: {p256dh, auth}}. The caller-facing layer validates it
// before handing it to the facade.
type Subscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// Validate checks that all required subscription fields are present.
func (s Subscription) Validate() error {
	switch {
	case s.Endpoint == "":
		return fmt.Errorf("%w: missing endpoint", ErrInvalidSubscription)
	case s.Keys.P256dh == "":
		return fmt.Errorf("%w: missing keys.p256dh", ErrInvalidSubscription)
	case s.Keys.Auth == "":
		return fmt.Errorf("%w: missing keys.auth", ErrInvalidSubscription)
	}
	return nil
}

// ParseSubscription decodes and validates a subscription from its JSON form,
// typically the contents of a subscription file or request body.
func ParseSubscription(data []byte) (Subscription, error) {
	var sub Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return Subscription{}, fmt.Errorf("%w: %v", ErrInvalidSubscription, err)
	}
	if err := sub.Validate(); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}
