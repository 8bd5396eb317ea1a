package decode

import (
	"errors"
	"time"

	"github.com/opd-ai/animplay/frame"
)

// Decode errors. Per-frame failures are recoverable: the affected slot
// simply stays a placeholder and playback stalls or skips nothing.
var (
	// ErrEmptyAnimation indicates source data with zero frames.
	ErrEmptyAnimation = errors.New("animation source has no frames")

	// ErrFrameOutOfRange indicates a frame index outside the animation.
	ErrFrameOutOfRange = errors.New("frame index out of range")

	// ErrRasterizerClosed indicates a decode after the handle was released.
	ErrRasterizerClosed = errors.New("rasterizer is closed")

	// ErrInvalidCanvas indicates a non-positive requested canvas size.
	ErrInvalidCanvas = errors.New("invalid canvas size")
)

// Rasterizer turns a frame index into pixel bytes at a requested canvas
// size. Implementations are stateful (they may keep a reusable
// composition canvas between calls) and are not safe for concurrent use;
// all calls for one animation must come from a single goroutine.
type Rasterizer interface {
	// FrameCount returns the total number of frames in the source.
	FrameCount() int

	// Size returns the source's native canvas size in pixels.
	Size() (width, height int)

	// Rasterize decodes the frame at index into an RGBA raster of the
	// given canvas size, returning the pixels and the frame's display
	// duration. Implementations may be optimized for sequential index
	// order; random access is allowed but may cost a recomposition.
	Rasterize(index, width, height int) (*frame.RasterImage, time.Duration, error)

	// Close releases the native decode resources. The rasterizer is
	// unusable afterwards.
	Close() error
}
