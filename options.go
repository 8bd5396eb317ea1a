package animplay

import (
	"fmt"
	"time"

	"github.com/opd-ai/animplay/clock"
	"github.com/opd-ai/animplay/decode"
)

// DefaultMaxTimeStep bounds how much elapsed time one display tick may
// contribute, so playback advances by at most one frame after the app
// was suspended for a while.
const DefaultMaxTimeStep = time.Second

// defaultQueueDepth is the decode queue's task buffer. It only needs to
// absorb the tick path's eviction/fill requests between decode steps.
const defaultQueueDepth = 64

// Options configures an Animator.
type Options struct {
	// Repeat controls how many loops play before the animator finishes.
	// The zero value loops forever.
	Repeat clock.RepeatPolicy

	// Window is the preload window width W: how many frames past the
	// playhead stay decoded. Zero (or any value covering the whole loop)
	// decodes every frame eagerly and never evicts.
	Window int

	// MaxTimeStep clamps a single tick's elapsed time. Zero selects
	// DefaultMaxTimeStep.
	MaxTimeStep time.Duration

	// CanvasWidth and CanvasHeight request a raster size for decoded
	// frames. Zero keeps the source's native size.
	CanvasWidth  int
	CanvasHeight int

	// OpenRasterizer builds the rasterizer for the source bytes handed
	// to Prepare. Defaults to decode.OpenGIF; callers with a different
	// native decoder supply their own.
	OpenRasterizer func(data []byte) (decode.Rasterizer, error)

	// Dispatch delivers observer callbacks (first frame, loop, finished).
	// A view layer typically injects its main-thread scheduler here.
	// Defaults to synchronous invocation.
	Dispatch func(fn func())
}

// DefaultOptions returns options for an infinitely looping animation at
// native size with eager decoding.
func DefaultOptions() Options {
	return Options{
		Repeat:      clock.RepeatInfinite,
		MaxTimeStep: DefaultMaxTimeStep,
	}
}

// withDefaults fills unset fields and validates the result.
func (o Options) withDefaults() (Options, error) {
	if o.MaxTimeStep == 0 {
		o.MaxTimeStep = DefaultMaxTimeStep
	}
	if o.MaxTimeStep < 0 {
		return o, fmt.Errorf("%w: max time step %v", ErrInvalidOptions, o.MaxTimeStep)
	}
	if o.Window < 0 {
		return o, fmt.Errorf("%w: window width %d", ErrInvalidOptions, o.Window)
	}
	if o.CanvasWidth < 0 || o.CanvasHeight < 0 {
		return o, fmt.Errorf("%w: canvas %dx%d", ErrInvalidOptions, o.CanvasWidth, o.CanvasHeight)
	}
	if o.OpenRasterizer == nil {
		o.OpenRasterizer = decode.OpenGIF
	}
	if o.Dispatch == nil {
		o.Dispatch = func(fn func()) { fn() }
	}
	return o, nil
}
