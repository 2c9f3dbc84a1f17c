package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLocalKey = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestReadConfig_DefaultsAndFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
authentication:
  paseto:
    local_key_hex: "`+testLocalKey+`"
patients:
  default_region: PT
`)

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "PT", cfg.Patients.DefaultRegion)
	assert.Equal(t, "mindcare.local", cfg.Patients.EmailDomain)
	assert.Equal(t, 2, cfg.Chat.PollIntervalSeconds)
	assert.Equal(t, 5, cfg.Invite.MaxGenerateAttempts)
	assert.Equal(t, "mindcare:", cfg.KV.KeyPrefix)
	assert.False(t, cfg.Crisis.EnforceForwardTransitions)
}

func TestReadConfig_EnvOverride(t *testing.T) {
	dir := writeConfig(t, `
authentication:
  paseto:
    local_key_hex: "`+testLocalKey+`"
`)
	t.Setenv("MINDCARE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("MINDCARE_CRISIS_ENFORCE_FORWARD_TRANSITIONS", "true")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.True(t, cfg.Crisis.EnforceForwardTransitions)
}

func TestReadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("MINDCARE_AUTHENTICATION_PASETO_LOCAL_KEY_HEX", testLocalKey)

	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Redis:  RedisConfig{Addr: "localhost:6379"},
			Authentication: AuthenticationConfig{
				Paseto: PasetoConfig{Mode: "local", LocalKeyHex: testLocalKey, Issuer: "i", Audience: "a"},
			},
			Invite: InviteConfig{MaxGenerateAttempts: 1},
			Chat:   ChatConfig{PollIntervalSeconds: 2},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"no redis", func(c *Config) { c.Redis.Addr = "" }, true},
		{"unknown paseto mode", func(c *Config) { c.Authentication.Paseto.Mode = "v2" }, true},
		{"local without key", func(c *Config) { c.Authentication.Paseto.LocalKeyHex = "" }, true},
		{"short encryption key", func(c *Config) { c.Authentication.EncryptionKey = "abcd" }, true},
		{"good encryption key", func(c *Config) { c.Authentication.EncryptionKey = testLocalKey }, false},
		{"zero invite attempts", func(c *Config) { c.Invite.MaxGenerateAttempts = 0 }, true},
		{"nats without url", func(c *Config) { c.Nats.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
