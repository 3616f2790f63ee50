// Package config loads the process environment the service needs before
// the first request is handled.
package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds the environment-provided settings. The two credentials are
// passed explicitly down the call chain and must never be logged or echoed.
type Config struct {
	// MailerAPIKey authenticates against the remote content provider.
	MailerAPIKey string `env:"MAILER_API_KEY"`
	// SigningSecret is the shared secret link tokens are signed with.
	SigningSecret string `env:"LINK_SIGNING_SECRET"`
	// MailerBaseURL overrides the content provider endpoint.
	MailerBaseURL string `env:"MAILER_BASE_URL"`
}

// Load reads the configuration from environment variables. Missing or
// blank credentials are not an error here: the request pipeline checks
// them on every request and fails closed with a 500.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
