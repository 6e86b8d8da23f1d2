package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9999")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("CONFIG", "/nonexistent/config.json")

	opts := Parse()

	assert.Equal(t, "127.0.0.1:9999", opts.Port)
	assert.Equal(t, "sqlite", opts.Backend)
	assert.Equal(t, "/tmp/test.db", opts.SQLitePath)
	assert.Equal(t, "topsecret", opts.JWTSecret)
	assert.Equal(t, "30m0s", opts.TokenTTL.String())
}
