package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketSigningKey(t *testing.T) {
	derived := AuthConfig{Secret: "jwt-secret"}.TicketSigningKey()
	assert.NotEmpty(t, derived)
	assert.NotEqual(t, "jwt-secret", derived)
	assert.Equal(t, derived, AuthConfig{Secret: "jwt-secret"}.TicketSigningKey())
	assert.NotEqual(t, derived, AuthConfig{Secret: "rotated"}.TicketSigningKey())

	explicit := AuthConfig{Secret: "jwt-secret", TicketSecret: "qr-secret"}
	assert.Equal(t, "qr-secret", explicit.TicketSigningKey())
}

func TestLoadConfig_TicketSecret(t *testing.T) {
	t.Setenv("DB_USER", "tickets")
	t.Setenv("DB_NAME", "tickets")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("TICKET_SIGNING_SECRET", "qr-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "qr-secret", cfg.Auth.TicketSigningKey())

	t.Setenv("TICKET_SIGNING_SECRET", "jwt-secret")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TICKET_SIGNING_SECRET")
}
