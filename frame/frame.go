package frame

import "time"

// RasterImage holds one decoded frame's pixels in a fixed 32-bit RGBA
// layout. Pix is row-major with Stride bytes per row; the buffer is owned
// by the frame and must not be modified after publication to a Store.
type RasterImage struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// Frame pairs an optional decoded raster with its display duration.
//
// A Frame value is immutable once published to a Store; state changes
// (decode completion, eviction) are expressed by replacing the slot with
// a new Frame value.
type Frame struct {
	// Image is the decoded raster, or nil for a placeholder.
	Image *RasterImage

	// Duration is how long this frame stays on screen. A zero or negative
	// duration means the duration is not yet known; the playback clock
	// treats it as infinite and stalls rather than skipping the frame.
	Duration time.Duration
}

// NewPlaceholder creates an undecoded frame with a known duration.
func NewPlaceholder(duration time.Duration) *Frame {
	return &Frame{Duration: duration}
}

// NewDecoded creates a fully decoded frame.
func NewDecoded(img *RasterImage, duration time.Duration) *Frame {
	return &Frame{Image: img, Duration: duration}
}

// IsDecoded reports whether the frame has pixel data available.
func (f *Frame) IsDecoded() bool {
	return f != nil && f.Image != nil
}

// Evicted returns a placeholder copy of the frame that keeps the duration
// but drops the pixel buffer. Used by the prefetch window when a frame
// scrolls out of the resident set.
func (f *Frame) Evicted() *Frame {
	return &Frame{Duration: f.Duration}
}
