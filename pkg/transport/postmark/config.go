package postmark

// Config holds Postmark transport configuration. FromEmail establishes the
// default sender identity for messages that carry no explicit From address.
type Config struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN,required"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	FromEmail    string `env:"POSTMARK_FROM_EMAIL,required"`
	FromName     string `env:"POSTMARK_FROM_NAME"`
	TrackOpens   bool   `env:"POSTMARK_TRACK_OPENS" envDefault:"true"`
}
