package clock

import (
	"errors"
	"testing"
	"time"
)

// fixedDurations builds a DurationFunc over a duration table.
func fixedDurations(durations []time.Duration) DurationFunc {
	return func(index int) time.Duration {
		if index < 0 || index >= len(durations) {
			return 0
		}
		return durations[index]
	}
}

func uniformDurations(n int, d time.Duration) []time.Duration {
	durations := make([]time.Duration, n)
	for i := range durations {
		durations[i] = d
	}
	return durations
}

// TestNewValidation verifies configuration errors keep the clock unbuildable.
func TestNewValidation(t *testing.T) {
	durationOf := fixedDurations(uniformDurations(3, time.Second))

	if _, err := New(0, time.Second, RepeatInfinite, durationOf); !errors.Is(err, ErrNoFrames) {
		t.Errorf("Expected ErrNoFrames for zero frames, got %v", err)
	}
	if _, err := New(3, 0, RepeatInfinite, durationOf); !errors.Is(err, ErrInvalidMaxStep) {
		t.Errorf("Expected ErrInvalidMaxStep for zero step, got %v", err)
	}
	if _, err := New(3, time.Second, RepeatInfinite, nil); !errors.Is(err, ErrNilDurationFunc) {
		t.Errorf("Expected ErrNilDurationFunc, got %v", err)
	}

	c, err := New(3, time.Second, RepeatInfinite, durationOf)
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("Expected initial state idle, got %v", c.State())
	}
}

// TestTickZeroIsIdempotent verifies advance(0) never changes the playhead
// or the loop counter.
func TestTickZeroIsIdempotent(t *testing.T) {
	c, err := New(3, time.Second, RepeatInfinite, fixedDurations(uniformDurations(3, 100*time.Millisecond)))
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}

	c.Tick(100 * time.Millisecond)
	frame := c.CurrentFrame()
	loops := c.CompletedLoops()

	for i := 0; i < 10; i++ {
		if c.Tick(0) {
			t.Error("Tick(0) must not report a new frame")
		}
	}
	if c.CurrentFrame() != frame || c.CompletedLoops() != loops {
		t.Error("Tick(0) must not change playhead or loop counter")
	}
}

// TestAccumulatorStaysBounded verifies banked time stays below the current
// frame's duration after every tick.
func TestAccumulatorStaysBounded(t *testing.T) {
	durations := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 150 * time.Millisecond}
	c, err := New(3, time.Second, RepeatInfinite, fixedDurations(durations))
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}

	ticks := []time.Duration{30, 70, 90, 110, 40, 60, 50, 10, 40}
	for _, ms := range ticks {
		c.Tick(ms * time.Millisecond)
		banked := c.Banked()
		current := durations[c.CurrentFrame()]
		if banked < 0 || banked >= current {
			t.Errorf("Banked time %v out of bounds [0, %v) at frame %d", banked, current, c.CurrentFrame())
		}
	}
}

// TestClampingNeverSkipsFrames verifies a single huge tick advances the
// playhead by at most one frame.
func TestClampingNeverSkipsFrames(t *testing.T) {
	maxStep := 50 * time.Millisecond
	c, err := New(10, maxStep, RepeatInfinite, fixedDurations(uniformDurations(10, 20*time.Millisecond)))
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}

	if !c.Tick(10 * maxStep) {
		t.Error("Clamped oversized tick should still advance once")
	}
	if c.CurrentFrame() != 1 {
		t.Errorf("Oversized tick must advance at most one frame, playhead at %d", c.CurrentFrame())
	}
}

// TestWrapLaw verifies one full loop's worth of elapsed time returns the
// playhead to its start and increments the loop counter exactly once.
func TestWrapLaw(t *testing.T) {
	durations := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 100 * time.Millisecond}
	c, err := New(3, time.Second, RepeatInfinite, fixedDurations(durations))
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}

	// Feed exactly the per-frame durations as ticks.
	for _, d := range durations {
		if !c.Tick(d) {
			t.Fatal("Each full-duration tick should advance one frame")
		}
	}

	if c.CurrentFrame() != 0 {
		t.Errorf("Playhead should wrap to 0, got %d", c.CurrentFrame())
	}
	if c.CompletedLoops() != 1 {
		t.Errorf("Expected exactly 1 completed loop, got %d", c.CompletedLoops())
	}
}

// TestStallOnUnknownDuration verifies an undecoded frame stalls playback
// instead of being skipped, and banks no time while stalled.
func TestStallOnUnknownDuration(t *testing.T) {
	ready := false
	durationOf := func(index int) time.Duration {
		if index == 1 && !ready {
			return 0
		}
		return 50 * time.Millisecond
	}

	c, err := New(3, time.Second, RepeatInfinite, durationOf)
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}

	c.Tick(50 * time.Millisecond) // advance onto frame 1
	if c.CurrentFrame() != 1 {
		t.Fatalf("Expected playhead at 1, got %d", c.CurrentFrame())
	}

	for i := 0; i < 20; i++ {
		if c.Tick(50 * time.Millisecond) {
			t.Fatal("Clock must stall on a frame with unknown duration")
		}
	}
	if c.Banked() != 0 {
		t.Errorf("Stalling must not bank time, got %v", c.Banked())
	}

	ready = true
	if !c.Tick(50 * time.Millisecond) {
		t.Error("Clock should advance once the frame's duration is known")
	}
	if c.CurrentFrame() != 2 {
		t.Errorf("Expected playhead at 2, got %d", c.CurrentFrame())
	}
}

// TestFiniteRepeatFinishes verifies Finished flips exactly when the loop
// counter reaches the policy threshold, never earlier.
func TestFiniteRepeatFinishes(t *testing.T) {
	d := 10 * time.Millisecond
	c, err := New(2, time.Second, RepeatCount(3), fixedDurations(uniformDurations(2, d)))
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}

	var finishedAtLoop int
	c.SetFinishedObserver(func() { finishedAtLoop = c.CompletedLoops() })

	for c.State() != StateFinished {
		c.Tick(d)
	}

	if c.CompletedLoops() != 3 {
		t.Errorf("Expected finish at 3 loops, got %d", c.CompletedLoops())
	}
	if finishedAtLoop != 3 {
		t.Errorf("Finished observer fired at loop %d, want 3", finishedAtLoop)
	}

	// Terminal state ignores further ticks.
	if c.Tick(d) {
		t.Error("Finished clock must ignore ticks")
	}
}

// TestInfiniteNeverFinishes verifies an infinite policy keeps playing.
func TestInfiniteNeverFinishes(t *testing.T) {
	d := 10 * time.Millisecond
	c, err := New(2, time.Second, RepeatInfinite, fixedDurations(uniformDurations(2, d)))
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}

	for i := 0; i < 500; i++ {
		c.Tick(d)
	}
	if c.IsFinished() {
		t.Error("Infinite policy must never finish")
	}
	if c.CompletedLoops() != 250 {
		t.Errorf("Expected 250 loops from 500 single-frame advances, got %d", c.CompletedLoops())
	}
}

// TestLoopObserverCounts verifies at most one loop notification per wrap
// with the running count.
func TestLoopObserverCounts(t *testing.T) {
	d := 10 * time.Millisecond
	c, err := New(3, time.Second, RepeatInfinite, fixedDurations(uniformDurations(3, d)))
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}

	var counts []int
	c.SetLoopObserver(func(completedLoops int) { counts = append(counts, completedLoops) })

	for i := 0; i < 9; i++ {
		c.Tick(d)
	}

	if len(counts) != 3 {
		t.Fatalf("Expected 3 loop notifications, got %d", len(counts))
	}
	for i, count := range counts {
		if count != i+1 {
			t.Errorf("Notification %d carried count %d, want %d", i, count, i+1)
		}
	}
}

// TestRepeatScenario walks the full reference scenario: three frames with
// durations 100ms/200ms/100ms and a two-loop policy driven by 100ms ticks.
func TestRepeatScenario(t *testing.T) {
	durations := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 100 * time.Millisecond}
	c, err := New(3, time.Second, RepeatCount(2), fixedDurations(durations))
	if err != nil {
		t.Fatalf("Failed to create clock: %v", err)
	}

	tick := 100 * time.Millisecond

	// First loop: 0 -> 1 (0.1s), hold (0.2s), -> 2 (0.3s), -> 0 (0.4s).
	wantFrames := []int{1, 1, 2, 0}
	for i, want := range wantFrames {
		c.Tick(tick)
		if c.CurrentFrame() != want {
			t.Fatalf("After tick %d expected frame %d, got %d", i+1, want, c.CurrentFrame())
		}
	}
	if c.CompletedLoops() != 1 {
		t.Errorf("Expected 1 loop after 0.4s, got %d", c.CompletedLoops())
	}
	if c.IsFinished() {
		t.Error("Must not finish before the second loop completes")
	}

	// Second loop: finished exactly at 0.8s total.
	for i := 0; i < 4; i++ {
		c.Tick(tick)
	}
	if !c.IsFinished() {
		t.Error("Expected finished after two full loops (0.8s)")
	}
	if c.CompletedLoops() != 2 {
		t.Errorf("Expected 2 loops, got %d", c.CompletedLoops())
	}
}
