package inject

import (
	"sync"
	"time"

	"go.viam.com/arlens/projection"
	"go.viam.com/arlens/tracking"
)

// Visual is an injected track visual.
type Visual struct {
	CloseFunc      func() error
	UpdateDataFunc func(det *projection.ProjectedDetection)
}

// Close calls the injected Close or returns nil.
func (v *Visual) Close() error {
	if v.CloseFunc == nil {
		return nil
	}
	return v.CloseFunc()
}

// UpdateData calls the injected UpdateData if set.
func (v *Visual) UpdateData(det *projection.ProjectedDetection) {
	if v.UpdateDataFunc == nil {
		return
	}
	v.UpdateDataFunc(det)
}

// VisualFactory is an injected visual factory. Without NewVisualFunc it returns an empty Visual.
type VisualFactory struct {
	NewVisualFunc func(anchor *tracking.Anchor, det *projection.ProjectedDetection) (tracking.Visual, error)
}

// NewVisual calls the injected NewVisual or returns an empty Visual.
func (f *VisualFactory) NewVisual(anchor *tracking.Anchor, det *projection.ProjectedDetection) (tracking.Visual, error) {
	if f.NewVisualFunc == nil {
		return &Visual{}, nil
	}
	return f.NewVisualFunc(anchor, det)
}

// Scheduler collects tick callbacks and runs them only when stepped.
type Scheduler struct {
	mu        sync.Mutex
	callbacks []func(dt time.Duration) bool
}

// OnTick registers f.
func (s *Scheduler) OnTick(f func(dt time.Duration) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, f)
}

// Step runs one tick of dt, dropping callbacks that return false.
func (s *Scheduler) Step(dt time.Duration) {
	s.mu.Lock()
	current := s.callbacks
	s.callbacks = nil
	s.mu.Unlock()

	var keep []func(time.Duration) bool
	for _, f := range current {
		if f(dt) {
			keep = append(keep, f)
		}
	}
	s.mu.Lock()
	s.callbacks = append(keep, s.callbacks...)
	s.mu.Unlock()
}

// Pending returns the number of registered callbacks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}
