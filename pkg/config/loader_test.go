package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovia/notifykit/pkg/config"
)

type smtpTestConfig struct {
	Host string `env:"TEST_SMTP_HOST" envDefault:"localhost"`
	Port int    `env:"TEST_SMTP_PORT" envDefault:"1025"`
	TLS  bool   `env:"TEST_SMTP_TLS" envDefault:"false"`
}

type retryTestConfig struct {
	MaxAttempts int `env:"TEST_RETRY_MAX_ATTEMPTS" envDefault:"3"`
}

func TestLoad_Defaults(t *testing.T) {
	config.ResetCache()

	var cfg smtpTestConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 1025, cfg.Port)
	assert.False(t, cfg.TLS)
}

func TestLoad_EnvOverride(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_SMTP_HOST", "smtp.agrovia.example")
	t.Setenv("TEST_SMTP_PORT", "587")
	t.Setenv("TEST_SMTP_TLS", "true")

	var cfg smtpTestConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "smtp.agrovia.example", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
	assert.True(t, cfg.TLS)
}

func TestLoad_CachedPerType(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_RETRY_MAX_ATTEMPTS", "5")

	var first retryTestConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, 5, first.MaxAttempts)

	// Mutating the environment after the first load must not change the
	// cached value for the same type.
	t.Setenv("TEST_RETRY_MAX_ATTEMPTS", "9")

	var second retryTestConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, 5, second.MaxAttempts)
}

func TestLoad_NilPointer(t *testing.T) {
	config.ResetCache()

	err := config.Load[smtpTestConfig](nil)
	require.ErrorIs(t, err, config.ErrNilPointer)
}

func TestLoadEnv_NonExistentPath(t *testing.T) {
	err := config.LoadEnv("testdata/does_not_exist.env")
	require.ErrorIs(t, err, config.ErrLoadingEnvFile)
}

func TestMustLoad_PanicsOnRequiredMissing(t *testing.T) {
	config.ResetCache()

	type strictConfig struct {
		Token string `env:"TEST_STRICT_TOKEN,required"`
	}

	assert.Panics(t, func() {
		var cfg strictConfig
		config.MustLoad(&cfg)
	})
}
