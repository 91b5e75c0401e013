package postmark

import "errors"

var (
	ErrInvalidConfig = errors.New("postmark: invalid config")
	ErrSendFailed    = errors.New("postmark: failed to send email")
)
