// Package clock implements the playback clock and repeat state machine
// that advances an animation playhead in lock-step with a display's
// refresh signal.
//
// The clock consumes elapsed-time ticks, banks them against the current
// frame's duration, and advances the playhead by at most one frame per
// tick. Sub-frame time is carried forward rather than discarded, so
// playback does not drift, and a single oversized tick (for example after
// the application resumes from suspension) is clamped so it can never
// skip frames.
//
// Loop completion is tracked against a RepeatPolicy; once the policy's
// threshold is met the clock enters the terminal Finished state and
// ignores further ticks.
package clock
