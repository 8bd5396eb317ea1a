package decode

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/animplay/frame"
)

// ErrNilRasterizer indicates an adapter was built without a rasterizer.
var ErrNilRasterizer = errors.New("rasterizer cannot be nil")

// Adapter owns a rasterizer handle for one animation instance and decodes
// frames at a fixed canvas size.
//
// All Decode calls must come from a single background goroutine, so the
// mutex is uncontended on the decode path. It exists for Close, which may
// be called from any goroutine while a decode is in flight: the release
// waits for the current rasterize step to finish instead of pulling the
// handle out from under it.
type Adapter struct {
	rasterizer Rasterizer
	width      int
	height     int

	mu        sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

// NewAdapter wraps a rasterizer, targeting the given canvas size. A
// non-positive width or height falls back to the source's native size.
func NewAdapter(r Rasterizer, width, height int) (*Adapter, error) {
	if r == nil {
		return nil, ErrNilRasterizer
	}
	if width <= 0 || height <= 0 {
		width, height = r.Size()
	}

	logrus.WithFields(logrus.Fields{
		"function":    "NewAdapter",
		"frame_count": r.FrameCount(),
		"width":       width,
		"height":      height,
	}).Debug("Decoder adapter created")

	return &Adapter{rasterizer: r, width: width, height: height}, nil
}

// FrameCount returns the total number of frames in the source.
func (a *Adapter) FrameCount() int {
	return a.rasterizer.FrameCount()
}

// CanvasSize returns the raster size frames are decoded at.
func (a *Adapter) CanvasSize() (int, int) {
	return a.width, a.height
}

// Decode rasterizes the frame at index into a decoded frame. A failure
// leaves the slot a placeholder on the caller's side; it is logged and
// not retried until the window walk revisits the index.
func (a *Adapter) Decode(index int) (*frame.Frame, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed.Load() {
		return nil, ErrRasterizerClosed
	}

	img, duration, err := a.rasterizer.Rasterize(index, a.width, a.height)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Decode",
			"index":    index,
			"error":    err.Error(),
		}).Warn("Frame decode failed, slot stays a placeholder")
		return nil, fmt.Errorf("decoding frame %d: %w", index, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Decode",
		"index":    index,
		"duration": duration,
	}).Trace("Frame decoded")

	return frame.NewDecoded(img, duration), nil
}

// Close releases the rasterizer handle. Safe to call from any goroutine
// and any number of times; the underlying release happens exactly once,
// after any in-flight Decode has finished. Decodes queued behind the
// flag flip fail fast with ErrRasterizerClosed.
func (a *Adapter) Close() {
	a.closeOnce.Do(func() {
		a.closed.Store(true)

		a.mu.Lock()
		defer a.mu.Unlock()
		if err := a.rasterizer.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Close",
				"error":    err.Error(),
			}).Warn("Rasterizer close reported an error")
		}
		logrus.WithFields(logrus.Fields{
			"function": "Close",
		}).Debug("Decoder handle released")
	})
}

// Closed reports whether the decoder handle has been released.
func (a *Adapter) Closed() bool {
	return a.closed.Load()
}
