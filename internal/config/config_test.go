// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "scalpel-dom", cfg.Logger().ServiceName)
	assert.Equal(t, "green", cfg.Logger().Colors.Info)
	assert.Equal(t, "standard", cfg.Host().Profile)
	assert.Empty(t, cfg.Host().Defects)
	assert.Equal(t, 1024.0, cfg.Host().ViewportWidth)
	assert.Equal(t, 768.0, cfg.Host().ViewportHeight)
	assert.True(t, cfg.Scripts().Enabled)
	assert.Equal(t, 30*time.Second, cfg.Scripts().Timeout)

	require.NoError(t, cfg.Validate(), "defaults must be valid")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Host Validation", func(t *testing.T) {
		valid := HostConfig{Profile: "trident", Defects: []string{"no-outer-html"}, ViewportWidth: 800, ViewportHeight: 600}
		assert.NoError(t, valid.Validate())

		unknownProfile := valid
		unknownProfile.Profile = "netscape"
		err := unknownProfile.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown host profile")

		unknownDefect := valid
		unknownDefect.Defects = []string{"time-travel"}
		err = unknownDefect.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown host defect")

		noViewport := valid
		noViewport.ViewportHeight = 0
		err = noViewport.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("Scripts Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.SetScriptsTimeout(0)
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "scripts.timeout must be a positive duration")

		cfg.SetScriptsEnabled(false)
		assert.NoError(t, cfg.Validate(), "the timeout is ignored when scripts are off")
	})
}

func TestHostConfig_ResolveProfile(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetHostProfile("khtml")
	cfg.SetHostDefects([]string{"opacity-via-filter"})
	cfg.SetHostViewport(640, 480)

	p, err := cfg.Host().ResolveProfile()
	require.NoError(t, err)
	assert.Equal(t, "khtml", p.Name)
	assert.True(t, p.OpacityViaFilter)

	opts, err := cfg.Host().Options()
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
host:
  profile: presto
  defects: ["static-offset"]
  viewport_width: 800
scripts:
  timeout: 5s
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "presto", cfg.Host().Profile)
		assert.Equal(t, []string{"static-offset"}, cfg.Host().Defects)
		assert.Equal(t, 800.0, cfg.Host().ViewportWidth)
		assert.Equal(t, 768.0, cfg.Host().ViewportHeight, "defaults fill the gaps")
		assert.Equal(t, 5*time.Second, cfg.Scripts().Timeout)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("host.profile", "mosaic")

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "unknown host profile")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetEnvPrefix("SCALPEL_DOM")
		v.AutomaticEnv()
		require.NoError(t, v.BindEnv("host.profile", "SCALPEL_DOM_HOST_PROFILE"))
		t.Setenv("SCALPEL_DOM_HOST_PROFILE", "webkit")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "webkit", cfg.Host().Profile)
	})
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/scalpel-dom.log
  colors:
    info: blue
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, "/var/log/scalpel-dom.log", cfg.Logger().LogFile)
	assert.Equal(t, "blue", cfg.Logger().Colors.Info)
	assert.Equal(t, "red", cfg.Logger().Colors.Error)
}
