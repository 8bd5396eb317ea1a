// Package window computes which frames of a looping animation should be
// resident around the playhead.
//
// Instead of decoding every frame up front, a window of configurable
// width W is kept decoded just ahead of the current frame. As the
// playhead advances, the frame it just left is evicted and the next
// missing index inside the window is scheduled for decode, walking the
// index space circularly. When W is at least frameCount-1 the whole
// animation fits in memory anyway and the window degenerates to a no-op:
// nothing is ever evicted.
//
// The manager is pure bookkeeping; it performs no decoding and holds no
// frame data, so all methods are cheap and safe for concurrent use.
package window
