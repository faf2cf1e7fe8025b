package cooler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLiquidctl writes a shell script that answers like the real CLI.
func stubLiquidctl(t *testing.T) string {
	t.Helper()

	script := `#!/bin/sh
case "$*" in
*list*)
	echo '[{"bus":"hid","address":"/dev/hidraw0","description":"NZXT Kraken X63"}]'
	;;
*status*)
	echo '[{"bus":"hid","address":"/dev/hidraw0","description":"NZXT Kraken X63","status":[{"key":"Liquid temperature","value":33.4,"unit":"°C"},{"key":"Fan speed","value":520,"unit":"rpm"},{"key":"Pump speed","value":1740,"unit":"rpm"}]}]'
	;;
*)
	exit 0
	;;
esac
`
	path := filepath.Join(t.TempDir(), "liquidctl")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

func TestLiquidctlDiscover(t *testing.T) {
	discoverer := &liquidctlDiscoverer{binary: stubLiquidctl(t)}

	devices, err := discoverer.Discover()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "NZXT Kraken X63", devices[0].Name())
}

func TestLiquidctlStatus(t *testing.T) {
	discoverer := &liquidctlDiscoverer{binary: stubLiquidctl(t)}

	devices, err := discoverer.Discover()
	require.NoError(t, err)
	require.Len(t, devices, 1)

	device := devices[0]
	require.NoError(t, device.Connect())
	require.NoError(t, device.Initialize())

	fields, err := device.Status()
	require.NoError(t, err)

	liquid, ok := LiquidTemp(fields)
	require.True(t, ok)
	assert.Equal(t, 33.4, liquid)

	fan, ok := FanRPM(fields)
	require.True(t, ok)
	assert.Equal(t, 520.0, fan)

	pump, ok := PumpRPM(fields)
	require.True(t, ok)
	assert.Equal(t, 1740.0, pump)

	require.NoError(t, device.SetFixedSpeed(ChannelFan, 53))
	require.NoError(t, device.SetColor(ChannelLED, ColorModeFixed, []string{"610061"}))
	require.NoError(t, device.Close())
}

func TestLiquidctlDiscoverMissingBinary(t *testing.T) {
	discoverer := &liquidctlDiscoverer{binary: filepath.Join(t.TempDir(), "missing")}

	_, err := discoverer.Discover()
	assert.Error(t, err)
}
