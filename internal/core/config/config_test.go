package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestReadDefaultsAndFile(t *testing.T) {
	p := writeYAML(t, `
session:
  store: memory
  secret: `+testSecret+`
db:
  driver: memory
mail:
  disabled: true
`)
	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.App.HTTP.Port)
	assert.Equal(t, "connect.sid", c.Session.CookieName)
	assert.Equal(t, 168, c.Session.TTLHours)
	assert.Equal(t, 5, c.RateLimit.Login.Max)
	assert.Equal(t, 60, c.RateLimit.Inquiry.WindowMin)
	assert.False(t, c.Storage.Enabled())
}

func TestReadEnvOverride(t *testing.T) {
	t.Setenv("APP_SESSION_SECRET", testSecret)
	t.Setenv("APP_SESSION_STORE", "memory")
	t.Setenv("APP_DB_DRIVER", "memory")
	t.Setenv("APP_MAIL_DISABLED", "true")
	t.Setenv("APP_APP_HTTP_PORT", "9090")

	c, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, testSecret, c.Session.Secret)
	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.True(t, c.Mail.Disabled)
}

func TestValidate(t *testing.T) {
	c := Config{
		App:     App{ClientOrigin: "http://localhost:5173"},
		DB:      DB{Driver: "mongo"},
		Session: Session{Store: "redis", Secret: "short"},
		Mail:    Mail{Port: 587},
	}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.secret")
	assert.Contains(t, err.Error(), "mail.host")
	assert.Contains(t, err.Error(), "mail.from")

	c.Session.Secret = testSecret
	c.Mail = Mail{Host: "smtp.example.com", Port: 465, Username: "u", Password: "p", From: "noreply@example.com"}
	assert.NoError(t, c.Validate())
}
