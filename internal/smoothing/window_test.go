package smoothing_test

import (
	"testing"

	"codeberg.org/voss/hydractl/internal/smoothing"
	"github.com/stretchr/testify/assert"
)

func TestWindowPushKeepsLastSamples(t *testing.T) {
	w := smoothing.NewWindow()

	for _, sample := range []float64{1, 2, 3, 4, 5, 6} {
		w.Push(sample)
	}

	// Exactly the last four, oldest first
	assert.Equal(t, smoothing.WindowSize, w.Len())
	assert.Equal(t, []float64{3, 4, 5, 6}, w.Samples())
	assert.InDelta(t, 4.5, w.Average(), 1e-9)
}

func TestWindowPartialFill(t *testing.T) {
	w := smoothing.NewWindow()
	w.Push(10)
	w.Push(20)

	assert.Equal(t, 2, w.Len())
	assert.InDelta(t, 15.0, w.Average(), 1e-9)
}

func TestWindowFillSeedsEverySlot(t *testing.T) {
	w := smoothing.NewWindow()
	w.Fill(40.0)

	assert.Equal(t, smoothing.WindowSize, w.Len())
	assert.InDelta(t, 40.0, w.Average(), 1e-9)

	// One new sample shifts the average only by its share
	w.Push(44.0)
	assert.InDelta(t, 41.0, w.Average(), 1e-9)
}

func TestWindowEmptyAverage(t *testing.T) {
	w := smoothing.NewWindow()
	assert.Zero(t, w.Average())
	assert.Zero(t, w.Len())
}

func TestWindowCustomCapacity(t *testing.T) {
	w := smoothing.NewWindowSize(2)
	w.Push(1)
	w.Push(2)
	w.Push(3)

	assert.Equal(t, []float64{2, 3}, w.Samples())

	// A nonsense capacity degrades to a single-sample window
	single := smoothing.NewWindowSize(0)
	single.Push(7)
	single.Push(9)
	assert.Equal(t, []float64{9}, single.Samples())
}
