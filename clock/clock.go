package clock

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Configuration errors reported by New. These prevent the clock from ever
// entering the Playing state.
var (
	// ErrNoFrames indicates a zero frame count.
	ErrNoFrames = errors.New("animation has no frames")

	// ErrInvalidMaxStep indicates a non-positive maximum time step.
	ErrInvalidMaxStep = errors.New("maximum time step must be positive")

	// ErrNilDurationFunc indicates no frame duration lookup was provided.
	ErrNilDurationFunc = errors.New("duration lookup function cannot be nil")
)

// State is the playback state of the clock.
type State uint32

const (
	// StateIdle indicates playback has not started yet.
	StateIdle State = iota
	// StatePlaying indicates the playhead is advancing.
	StatePlaying
	// StateFinished is terminal; further ticks are ignored.
	StateFinished
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// DurationFunc looks up the display duration of a frame index. A zero or
// negative result means the duration is not yet known (the frame has not
// been decoded); the clock stalls on that frame instead of skipping it.
type DurationFunc func(index int) time.Duration

// Clock advances an animation playhead from elapsed-time ticks and tracks
// loop completion against a repeat policy.
//
// Tick is designed for a real-time display-refresh callback: it performs
// no allocation and no blocking work beyond a short mutex hold shared
// only with state accessors.
type Clock struct {
	mu sync.Mutex

	state       State
	frameCount  int
	current     int
	accumulated time.Duration
	maxStep     time.Duration
	policy      RepeatPolicy
	loops       int
	durationOf  DurationFunc

	// Observers, invoked outside the mutex after the transition is durable.
	onLoop     func(completedLoops int)
	onFinished func()
}

// New creates a clock for an animation with frameCount frames.
//
// maxStep bounds how much elapsed time a single tick may contribute, so a
// huge tick after app suspension advances the playhead by at most one
// frame. durationOf supplies per-frame durations and is called on the
// tick path; it must be cheap and safe for concurrent use.
func New(frameCount int, maxStep time.Duration, policy RepeatPolicy, durationOf DurationFunc) (*Clock, error) {
	if frameCount <= 0 {
		return nil, ErrNoFrames
	}
	if maxStep <= 0 {
		return nil, ErrInvalidMaxStep
	}
	if durationOf == nil {
		return nil, ErrNilDurationFunc
	}

	logrus.WithFields(logrus.Fields{
		"function":    "New",
		"frame_count": frameCount,
		"max_step":    maxStep,
		"policy":      policy.String(),
	}).Debug("Playback clock created")

	return &Clock{
		state:      StateIdle,
		frameCount: frameCount,
		maxStep:    maxStep,
		policy:     policy,
		durationOf: durationOf,
	}, nil
}

// SetLoopObserver registers a callback invoked once per completed loop
// with the new loop count. Must be set before ticking starts.
func (c *Clock) SetLoopObserver(fn func(completedLoops int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLoop = fn
}

// SetFinishedObserver registers a callback invoked exactly once when the
// repeat policy is satisfied. Must be set before ticking starts.
func (c *Clock) SetFinishedObserver(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinished = fn
}

// Tick consumes one elapsed-time value from the display refresh signal
// and reports whether the playhead moved to a new frame.
//
// At most one frame advance happens per tick. Elapsed time beyond the
// consumed frame duration stays banked for the next tick; elapsed time
// beyond the configured maximum step is discarded. A frame whose duration
// is not yet known stalls the clock without banking time.
func (c *Clock) Tick(elapsed time.Duration) bool {
	c.mu.Lock()

	if c.state == StateFinished || elapsed <= 0 {
		c.mu.Unlock()
		return false
	}

	d := c.durationOf(c.current)
	if d <= 0 {
		// Frame not decoded yet. Stay put; banking stall time here would
		// burst through frames once the decode lands.
		c.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function": "Tick",
			"frame":    c.current,
		}).Trace("Stalling on undecoded frame")
		return false
	}

	if c.state == StateIdle {
		c.state = StatePlaying
		logrus.WithFields(logrus.Fields{
			"function":    "Tick",
			"frame_count": c.frameCount,
		}).Debug("Playback started")
	}

	bounded := elapsed
	if bounded > c.maxStep {
		bounded = c.maxStep
	}
	c.accumulated += bounded

	if c.accumulated < d {
		c.mu.Unlock()
		return false
	}

	// Carry the remainder forward rather than resetting to zero, so
	// sub-frame time is never discarded and playback does not drift.
	c.accumulated -= d
	c.current = (c.current + 1) % c.frameCount

	var (
		notifyLoop     func(int)
		notifyFinished func()
		loops          int
	)
	if c.current == 0 {
		c.loops++
		loops = c.loops
		notifyLoop = c.onLoop
		if c.policy.Satisfied(c.loops) {
			c.state = StateFinished
			notifyFinished = c.onFinished
		}
	}
	finished := c.state == StateFinished
	current := c.current
	c.mu.Unlock()

	if notifyLoop != nil {
		notifyLoop(loops)
	}
	if notifyFinished != nil {
		notifyFinished()
	}

	if finished {
		logrus.WithFields(logrus.Fields{
			"function":        "Tick",
			"completed_loops": loops,
			"policy":          c.policy.String(),
		}).Info("Playback finished")
	} else {
		logrus.WithFields(logrus.Fields{
			"function": "Tick",
			"frame":    current,
		}).Trace("Playhead advanced")
	}

	return true
}

// CurrentFrame returns the playhead index.
func (c *Clock) CurrentFrame() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CompletedLoops returns how many full loops have played.
func (c *Clock) CompletedLoops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loops
}

// State returns the current playback state.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsFinished reports whether the repeat policy has been satisfied.
func (c *Clock) IsFinished() bool {
	return c.State() == StateFinished
}

// Banked returns the sub-frame time carried toward the next advance.
// Exposed for observability; the value is always below the current
// frame's duration.
func (c *Clock) Banked() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accumulated
}
