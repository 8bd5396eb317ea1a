package window

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrNoFrames indicates a manager cannot be built for an empty animation.
var ErrNoFrames = errors.New("animation has no frames")

// Manager decides frame residency for a circular animation of fixed
// length. It is immutable after construction.
type Manager struct {
	frameCount int
	width      int
}

// NewManager creates a window manager for frameCount frames with a
// preload window of the given width. A width below 1, or one that covers
// the whole loop, disables eviction entirely (eager residency).
func NewManager(frameCount, width int) (*Manager, error) {
	if frameCount <= 0 {
		return nil, ErrNoFrames
	}

	m := &Manager{frameCount: frameCount, width: width}

	logrus.WithFields(logrus.Fields{
		"function":    "NewManager",
		"frame_count": frameCount,
		"width":       width,
		"active":      m.Active(),
	}).Debug("Prefetch window manager created")

	return m, nil
}

// Active reports whether windowed preloading is in effect. When false,
// every frame stays resident once decoded and EvictTarget never selects
// a frame.
func (m *Manager) Active() bool {
	return m.width >= 1 && m.width < m.frameCount-1
}

// Width returns the configured window width.
func (m *Manager) Width() int {
	return m.width
}

// Contains reports whether index lies on the circular arc of length
// Width starting just after the playhead.
func (m *Manager) Contains(index, playhead int) bool {
	if !m.Active() {
		return true
	}
	// Distance from playhead+1 to index, walking forward around the loop.
	dist := (index - playhead - 1 + 2*m.frameCount) % m.frameCount
	return dist < m.width
}

// EvictTarget returns the index to evict after the playhead advanced to
// newPlayhead: the frame it just left. The second return is false when
// preloading is inactive or the loop is too short for eviction to mean
// anything.
func (m *Manager) EvictTarget(newPlayhead int) (int, bool) {
	if !m.Active() || m.frameCount < 2 {
		return 0, false
	}
	return (newPlayhead - 1 + m.frameCount) % m.frameCount, true
}

// NextMissing walks the window ahead of the playhead in circular order
// and returns the first index for which decoded reports false. The second
// return is false when the window is fully populated or preloading is
// inactive.
func (m *Manager) NextMissing(playhead int, decoded func(index int) bool) (int, bool) {
	if !m.Active() {
		return 0, false
	}
	for step := 1; step <= m.width; step++ {
		idx := (playhead + step) % m.frameCount
		if !decoded(idx) {
			return idx, true
		}
	}
	return 0, false
}

// InitialIndices returns the indices the first decode pass should fill:
// the playhead itself plus the window ahead of it, in decode order. With
// preloading inactive this is every index of the loop.
func (m *Manager) InitialIndices(playhead int) []int {
	count := m.frameCount
	if m.Active() {
		count = m.width + 1
	}
	indices := make([]int, 0, count)
	for step := 0; step < count; step++ {
		indices = append(indices, (playhead+step)%m.frameCount)
	}
	return indices
}
