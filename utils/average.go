package utils

import "sync"

// RollingWindow keeps the most recent numSamples values in insertion order.
type RollingWindow struct {
	mu   sync.Mutex
	data []float64
	pos  int
	full bool
}

// NewRollingWindow returns a window that holds at most numSamples values.
func NewRollingWindow(numSamples int) *RollingWindow {
	if numSamples < 1 {
		numSamples = 1
	}
	return &RollingWindow{data: make([]float64, numSamples)}
}

// NumSamples returns the capacity of the window.
func (rw *RollingWindow) NumSamples() int {
	return len(rw.data)
}

// Add records x, overwriting the oldest value once the window is full.
func (rw *RollingWindow) Add(x float64) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.data[rw.pos] = x
	rw.pos++
	if rw.pos >= len(rw.data) {
		rw.pos = 0
		rw.full = true
	}
}

// Values returns a copy of the recorded values, oldest first.
func (rw *RollingWindow) Values() []float64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if !rw.full {
		return append([]float64(nil), rw.data[:rw.pos]...)
	}
	out := make([]float64, 0, len(rw.data))
	out = append(out, rw.data[rw.pos:]...)
	return append(out, rw.data[:rw.pos]...)
}

// Average returns the mean of the recorded values, or 0 when empty.
func (rw *RollingWindow) Average() float64 {
	values := rw.Values()
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
