package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/entitlement/pkg/config"
)

type limiterConfig struct {
	WindowSeconds int    `env:"TEST_LIMITER_WINDOW" envDefault:"60"`
	KeyPrefix     string `env:"TEST_LIMITER_PREFIX" envDefault:"ratelimit"`
}

type requiredConfig struct {
	Secret string `env:"TEST_REQUIRED_SECRET_MISSING,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg limiterConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 60, cfg.WindowSeconds)
	assert.Equal(t, "ratelimit", cfg.KeyPrefix)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TEST_OVERRIDE_WINDOW", "120")

	type overrideConfig struct {
		WindowSeconds int `env:"TEST_OVERRIDE_WINDOW" envDefault:"60"`
	}

	var cfg overrideConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 120, cfg.WindowSeconds)
}

func TestLoad_CachesPerType(t *testing.T) {
	t.Setenv("TEST_CACHED_VALUE", "first")

	type cachedConfig struct {
		Value string `env:"TEST_CACHED_VALUE"`
	}

	var first cachedConfig
	require.NoError(t, config.Load(&first))
	require.Equal(t, "first", first.Value)

	// A changed environment does not affect an already-loaded type.
	t.Setenv("TEST_CACHED_VALUE", "second")
	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)
}

func TestLoad_RequiredMissing(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *limiterConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	type mustConfig struct {
		Secret string `env:"TEST_MUST_SECRET_MISSING,required"`
	}

	assert.Panics(t, func() {
		var cfg mustConfig
		config.MustLoad(&cfg)
	})
}
