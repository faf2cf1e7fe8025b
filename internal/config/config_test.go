package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/voss/hydractl/internal/config"
	"codeberg.org/voss/hydractl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configContent := []byte(`
interval = 5
degree_min = 28.0
degree_max = 44.0
hue_fix = true
governor = "schedutil"
sensor_chip = "coretemp"
root_port = 19096
user_port = 19095
gateway_port = 19090
bridge_port = 19091
monitor = true
`)
	configPath := filepath.Join(tempDir, "hydractl.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	// Set environment variable to point to the test config file
	t.Setenv("HYDRACTL_CONFIG", configPath)

	// Load the config
	cfg, err := config.Load()
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 5, cfg.Interval, "Expected Interval 5")
	assert.Equal(t, 28.0, cfg.DegreeMin, "Expected DegreeMin 28")
	assert.Equal(t, 44.0, cfg.DegreeMax, "Expected DegreeMax 44")
	assert.True(t, cfg.HueFix, "Expected HueFix true")
	assert.Equal(t, "schedutil", cfg.Governor, "Expected Governor schedutil")
	assert.Equal(t, "coretemp", cfg.SensorChip, "Expected SensorChip coretemp")
	assert.Equal(t, 19096, cfg.RootPort, "Expected RootPort 19096")
	assert.Equal(t, 19095, cfg.UserPort, "Expected UserPort 19095")
	assert.Equal(t, 19090, cfg.GatewayPort, "Expected GatewayPort 19090")
	assert.Equal(t, 19091, cfg.BridgePort, "Expected BridgePort 19091")
	assert.True(t, cfg.Monitor, "Expected Monitor true")
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	t.Setenv("HYDRACTL_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	// Assert default values
	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, config.DefaultDegreeMin, cfg.DegreeMin)
	assert.Equal(t, config.DefaultDegreeMax, cfg.DegreeMax)
	assert.False(t, cfg.HueFix, "Expected default HueFix false")
	assert.Equal(t, config.DefaultGovernor, cfg.Governor)
	assert.Equal(t, config.DefaultSensorChip, cfg.SensorChip)
	assert.Equal(t, config.DefaultSensorLabels, cfg.SensorLabels)
	assert.Equal(t, config.DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, config.DefaultRootPort, cfg.RootPort)
	assert.Equal(t, config.DefaultUserPort, cfg.UserPort)
	assert.Equal(t, config.DefaultGatewayPort, cfg.GatewayPort)
	assert.Equal(t, config.DefaultBridgePort, cfg.BridgePort)
	assert.False(t, cfg.Monitor, "Expected default Monitor false")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	// Create an invalid test config file
	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "hydractl.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("HYDRACTL_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadInvalidInterval(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "hydractl.toml")
	err = os.WriteFile(configPath, []byte("interval = 0\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("HYDRACTL_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}

func TestLoadClampsAndNormalizes(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	// Out-of-range temperatures clamp; a reversed gradient and unusable
	// ports fall back to defaults
	configContent := []byte(`
degree_min = -10.0
degree_max = 150.0
root_port = 80
user_port = 70000
`)
	configPath := filepath.Join(tempDir, "hydractl.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("HYDRACTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.DegreeMin, "Expected DegreeMin clamped to 0")
	assert.Equal(t, 100.0, cfg.DegreeMax, "Expected DegreeMax clamped to 100")
	assert.Equal(t, config.DefaultRootPort, cfg.RootPort, "Expected privileged port fallback")
	assert.Equal(t, config.DefaultUserPort, cfg.UserPort, "Expected unprivileged port fallback")
}

func TestLoadReversedGradientFallsBack(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "hydractl.toml")
	err = os.WriteFile(configPath, []byte("degree_min = 50.0\ndegree_max = 40.0\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("HYDRACTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDegreeMin, cfg.DegreeMin)
	assert.Equal(t, config.DefaultDegreeMax, cfg.DegreeMax)
}
