package hostsensor_test

import (
	"context"
	"testing"

	"codeberg.org/voss/hydractl/internal/hostsensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateFromLiquid(t *testing.T) {
	// The fit crosses a round number at 40 degrees coolant
	assert.InDelta(t, 63.0, hostsensor.EstimateFromLiquid(40.0), 1e-9)

	// Warmer coolant estimates a warmer die, 4 degrees per coolant degree
	assert.InDelta(t, 67.0, hostsensor.EstimateFromLiquid(41.0), 1e-9)
	assert.Greater(t,
		hostsensor.EstimateFromLiquid(45.0),
		hostsensor.EstimateFromLiquid(35.0))
}

func TestReaderFunc(t *testing.T) {
	reader := hostsensor.ReaderFunc(func(context.Context) (float64, error) {
		return 58.2, nil
	})

	temp, err := reader.CPUTemperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 58.2, temp)
}
