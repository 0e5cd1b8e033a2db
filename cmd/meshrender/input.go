package main

import (
	"sync"

	"github.com/nivenh/meshlet/common"
)

// inputState tracks currently-held keys and middle-mouse-drag deltas
// between window update-loop ticks (window.Window's callbacks fire from
// the platform message pump, so access is guarded by a mutex).
type inputState struct {
	mu       sync.Mutex
	held     map[uint32]bool
	orbiting bool
	lastX    int32
	lastY    int32
	dx, dy   float32

	onToggleLock func()
	onToggleWire func()
	onCycleDebug func()
}

func newInputState() *inputState {
	return &inputState{held: make(map[uint32]bool)}
}

func (s *inputState) down(key uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[key]
}

func (s *inputState) onKeyDown(key uint32) {
	s.mu.Lock()
	s.held[key] = true
	s.mu.Unlock()

	switch key {
	case common.KeyL:
		if s.onToggleLock != nil {
			s.onToggleLock()
		}
	case common.KeyX:
		if s.onToggleWire != nil {
			s.onToggleWire()
		}
	case common.KeyM:
		if s.onCycleDebug != nil {
			s.onCycleDebug()
		}
	}
}

func (s *inputState) onKeyUp(key uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[key] = false
}

func (s *inputState) onMiddleMouseDown(x, y int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orbiting = true
	s.lastX, s.lastY = x, y
}

func (s *inputState) onMiddleMouseUp(x, y int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orbiting = false
}

func (s *inputState) onMouseMove(x, y int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orbiting {
		s.dx += float32(x - s.lastX)
		s.dy += float32(y - s.lastY)
	}
	s.lastX, s.lastY = x, y
}

// consumeLook returns and resets the accumulated mouse-drag delta since
// the last call.
func (s *inputState) consumeLook() (float32, float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dx, dy := s.dx, s.dy
	s.dx, s.dy = 0, 0
	return dx, dy
}
