package cpufreq_test

import (
	"testing"

	"codeberg.org/voss/hydractl/internal/cpufreq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	// Below the warm threshold the operator's choice stands
	assert.Equal(t, "schedutil", cpufreq.Select("schedutil", 35.0))
	assert.Equal(t, "performance", cpufreq.Select("performance", cpufreq.WarmDegree))

	// Above it the GPU wins the argument
	assert.Equal(t, "powersave", cpufreq.Select("performance", 39.5))
	assert.Equal(t, "powersave", cpufreq.Select("schedutil", 70.0))
}

func TestWriterFunc(t *testing.T) {
	var applied string
	writer := cpufreq.WriterFunc(func(governor string) error {
		applied = governor
		return nil
	})

	require.NoError(t, writer.Apply("powersave"))
	assert.Equal(t, "powersave", applied)
}
