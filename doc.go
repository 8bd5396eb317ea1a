// Package animplay plays back multi-frame raster animations with bounded
// memory.
//
// The core problem is reconciling four constraints: frame decode cost may
// exceed one display refresh interval, the memory budget forbids holding
// every decoded frame at once, a single mutable playhead is read from a
// real-time refresh callback while frames are filled in by a background
// task, and repeat-count and finish semantics must be exact.
//
// # Architecture
//
// The module consists of small leaf packages composed by the root:
//
//   - frame: the decoded frame type and the atomic-slot Store shared
//     between the decode task and the tick path
//   - decode: the Rasterizer boundary to the native decoder, a GIF-backed
//     reference implementation, and the Adapter that owns the handle
//   - window: the circular prefetch window that decides residency and
//     eviction around the playhead
//   - clock: the playback clock and repeat state machine driven by
//     display-refresh ticks
//   - animplay (this package): the Animator composition root and its
//     serial background decode queue
//
// # Usage
//
// Create an Animator, prepare it with source bytes, and drive it from a
// display-refresh signal:
//
//	anim, err := animplay.New(animplay.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	anim.SetFinishedCallback(func() { stopRefreshSignal() })
//	if err := anim.Prepare(gifData); err != nil {
//	    return err
//	}
//	defer anim.Dispose()
//
//	// Once per vsync:
//	if anim.Advance(elapsed) {
//	    surface.Draw(anim.CurrentFrameImage())
//	}
//
// The tick path never blocks and never decodes; all rasterization happens
// on one background goroutine per Animator, in FIFO order, so non-reentrant
// native decoders are safe without extra locking.
package animplay
