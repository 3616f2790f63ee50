package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("MAILER_API_KEY", "key-123")
	t.Setenv("LINK_SIGNING_SECRET", "secret-456")
	t.Setenv("MAILER_BASE_URL", "http://localhost:9999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "key-123", cfg.MailerAPIKey)
	assert.Equal(t, "secret-456", cfg.SigningSecret)
	assert.Equal(t, "http://localhost:9999", cfg.MailerBaseURL)
}

func TestLoadEmptyEnvironment(t *testing.T) {
	t.Setenv("MAILER_API_KEY", "")
	t.Setenv("LINK_SIGNING_SECRET", "")
	t.Setenv("MAILER_BASE_URL", "")

	// missing credentials are a per-request concern, not a load error
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.MailerAPIKey)
	assert.Empty(t, cfg.SigningSecret)
}
