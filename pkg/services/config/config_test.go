package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/metagrowth/growth-agent/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	cfg, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, 8000, cfg.APIPort)
	assert.Equal(t, "claude", cfg.LLMProvider)
	assert.Equal(t, 60, cfg.JWTExpMinutes)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.True(t, cfg.IsLocal())
}

func TestLoadSettings_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9100")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.APIPort)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.False(t, cfg.IsLocal())
}

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_port: 7000\nreport_bucket_path: s3://bucket/reports\n"), 0o600))

	cfg, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.APIPort)
	assert.Equal(t, "s3://bucket/reports", cfg.ReportBucketPath)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRegistry_TokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials")

	reg, err := NewRegistry(path)
	require.NoError(t, err)

	profiles, err := reg.GetProfiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)

	s := session.New(NewTokenStore(reg, ""))
	require.NoError(t, s.SetToken("jwt-token"))

	reopened, err := NewRegistry(path)
	require.NoError(t, err)
	p, err := reopened.GetProfile(ctx, DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", p.AuthToken)

	fresh := session.New(NewTokenStore(reopened, DefaultProfile))
	assert.Equal(t, "jwt-token", fresh.Token())

	require.NoError(t, fresh.ClearToken())
	again, err := NewRegistry(path)
	require.NoError(t, err)
	assert.Empty(t, session.New(NewTokenStore(again, DefaultProfile)).Token())
}

func TestRegistry_HostAndProfiles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(path, []byte("[default]\nhost = http://localhost:8000\n\n[staging]\nhost = https://staging.example.com\nauth_token = abc\n"), 0o600))

	reg, err := NewRegistry(path)
	require.NoError(t, err)

	profiles, err := reg.GetProfiles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"default", "staging"}, profiles)

	p, err := reg.GetProfile(ctx, "staging")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", p.Host)
	assert.Equal(t, "abc", p.AuthToken)

	_, err = reg.GetProfile(ctx, "missing")
	assert.Error(t, err)
}

func TestRegistry_SetHostKeepsToken(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(path, []byte("[default]\nhost = http://old\nauth_token = tok\n"), 0o600))

	reg, err := NewRegistry(path)
	require.NoError(t, err)
	require.NoError(t, reg.SetHost(ctx, DefaultProfile, "http://new"))

	reopened, err := NewRegistry(path)
	require.NoError(t, err)
	p, err := reopened.GetProfile(ctx, DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "http://new", p.Host)
	assert.Equal(t, "tok", p.AuthToken)

	require.NoError(t, reopened.SetToken(ctx, DefaultProfile, ""))
	p, err = reopened.GetProfile(ctx, DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "http://new", p.Host)
	assert.Empty(t, p.AuthToken)
}
