// Package smoothing damps actuator response to single noisy readings with a
// fixed-size moving average.
package smoothing

// WindowSize is the number of recent samples averaged into a smoothed
// temperature.
const WindowSize = 4

// Window is a fixed-capacity FIFO of recent samples. Once full, the oldest
// sample is evicted exactly when a new one is appended.
type Window struct {
	samples  []float64
	capacity int
}

// NewWindow returns a window of the default size.
func NewWindow() *Window {
	return NewWindowSize(WindowSize)
}

// NewWindowSize returns a window holding up to capacity samples.
// A capacity below one is treated as one.
func NewWindowSize(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}

	return &Window{
		samples:  make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a sample, evicting the oldest if the window is full.
func (w *Window) Push(sample float64) {
	if len(w.samples) == w.capacity {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:w.capacity-1]
	}
	w.samples = append(w.samples, sample)
}

// Fill seeds the whole window with one sample, as on the first reading.
func (w *Window) Fill(sample float64) {
	w.samples = w.samples[:0]
	for i := 0; i < w.capacity; i++ {
		w.samples = append(w.samples, sample)
	}
}

// Average returns the arithmetic mean of the held samples, or 0 if empty.
func (w *Window) Average() float64 {
	if len(w.samples) == 0 {
		return 0
	}

	sum := 0.0
	for _, sample := range w.samples {
		sum += sample
	}

	return sum / float64(len(w.samples))
}

// Len returns the number of held samples.
func (w *Window) Len() int {
	return len(w.samples)
}

// Samples returns the held samples in arrival order, oldest first.
func (w *Window) Samples() []float64 {
	out := make([]float64, len(w.samples))
	copy(out, w.samples)

	return out
}
