package decode

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"time"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	"github.com/opd-ai/animplay/frame"
)

// fallbackFrameDelay replaces the zero or negative delays some GIF
// encoders emit, matching the 100ms convention of common players.
const fallbackFrameDelay = 100 * time.Millisecond

// GIF rasterizes frames of an animated GIF source.
//
// GIF frames are deltas against a composition canvas, so the rasterizer
// keeps one reusable canvas at the native size and composites frames in
// sequence, honoring each frame's disposal mode. Sequential index order
// is cheap; jumping backwards recomposites from the start of the loop.
// Not safe for concurrent use.
type GIF struct {
	src    *gif.GIF
	width  int
	height int

	canvas *image.RGBA // reusable composition canvas, native size
	scaled *image.RGBA // reusable scale target, allocated on demand
	next   int         // frame index the next composition step expects

	// Disposal for the most recently composited frame, applied lazily at
	// the start of the following step so the canvas still shows the
	// displayed frame when pixels are read out.
	pendingDisposal byte
	pendingRect     image.Rectangle
	restore         *image.RGBA

	closed bool
}

// OpenGIF decodes GIF source bytes into a rasterizer. The frame image
// data is retained in compressed paletted form; full RGBA rasters are
// only produced per frame on demand.
func OpenGIF(data []byte) (Rasterizer, error) {
	src, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding GIF source: %w", err)
	}
	if len(src.Image) == 0 {
		return nil, ErrEmptyAnimation
	}

	width, height := src.Config.Width, src.Config.Height
	if width <= 0 || height <= 0 {
		// Some encoders omit the logical screen size.
		bounds := src.Image[0].Bounds()
		width, height = bounds.Dx(), bounds.Dy()
	}

	logrus.WithFields(logrus.Fields{
		"function":    "OpenGIF",
		"frame_count": len(src.Image),
		"width":       width,
		"height":      height,
		"loop_count":  src.LoopCount,
	}).Info("GIF rasterizer opened")

	return &GIF{
		src:    src,
		width:  width,
		height: height,
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// FrameCount returns the number of frames in the GIF.
func (g *GIF) FrameCount() int {
	return len(g.src.Image)
}

// Size returns the GIF's logical screen size.
func (g *GIF) Size() (int, int) {
	return g.width, g.height
}

// Rasterize composites the frame at index and returns it as an RGBA
// raster of the requested canvas size, scaled from the native size when
// they differ.
func (g *GIF) Rasterize(index, width, height int) (*frame.RasterImage, time.Duration, error) {
	if g.closed {
		return nil, 0, ErrRasterizerClosed
	}
	if index < 0 || index >= len(g.src.Image) {
		return nil, 0, fmt.Errorf("%w: %d of %d", ErrFrameOutOfRange, index, len(g.src.Image))
	}
	if width <= 0 || height <= 0 {
		return nil, 0, fmt.Errorf("%w: %dx%d", ErrInvalidCanvas, width, height)
	}

	if index < g.next {
		g.rewind()
	}
	for g.next <= index {
		g.step()
	}

	img := g.readOut(width, height)

	logrus.WithFields(logrus.Fields{
		"function": "Rasterize",
		"index":    index,
		"width":    width,
		"height":   height,
	}).Trace("GIF frame rasterized")

	return img, g.frameDuration(index), nil
}

// Close drops the decoded source and composition buffers. Idempotent.
func (g *GIF) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	g.src = nil
	g.canvas = nil
	g.scaled = nil
	g.restore = nil

	logrus.WithFields(logrus.Fields{
		"function": "Close",
	}).Debug("GIF rasterizer closed")
	return nil
}

// rewind resets the composition to the start of the loop.
func (g *GIF) rewind() {
	clearRGBA(g.canvas, g.canvas.Bounds())
	g.pendingDisposal = gif.DisposalNone
	g.restore = nil
	g.next = 0
}

// step composites the next frame onto the canvas, leaving the canvas in
// its displayed state. The frame's disposal is remembered and applied at
// the start of the following step.
func (g *GIF) step() {
	g.applyPendingDisposal()

	idx := g.next
	src := g.src.Image[idx]

	disposal := byte(gif.DisposalNone)
	if idx < len(g.src.Disposal) {
		disposal = g.src.Disposal[idx]
	}
	if disposal == gif.DisposalPrevious {
		g.restore = cloneRGBA(g.canvas)
	}

	draw.Draw(g.canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)

	g.pendingDisposal = disposal
	g.pendingRect = src.Bounds()
	g.next++
}

// applyPendingDisposal mutates the canvas per the previous frame's
// disposal mode before the next frame is drawn.
func (g *GIF) applyPendingDisposal() {
	switch g.pendingDisposal {
	case gif.DisposalBackground:
		clearRGBA(g.canvas, g.pendingRect)
	case gif.DisposalPrevious:
		if g.restore != nil {
			copy(g.canvas.Pix, g.restore.Pix)
			g.restore = nil
		}
	}
	g.pendingDisposal = gif.DisposalNone
}

// readOut copies the canvas into a freshly owned raster, scaling when the
// requested size differs from the native size.
func (g *GIF) readOut(width, height int) *frame.RasterImage {
	src := g.canvas
	if width != g.width || height != g.height {
		if g.scaled == nil || g.scaled.Bounds().Dx() != width || g.scaled.Bounds().Dy() != height {
			g.scaled = image.NewRGBA(image.Rect(0, 0, width, height))
		}
		xdraw.ApproxBiLinear.Scale(g.scaled, g.scaled.Bounds(), g.canvas, g.canvas.Bounds(), xdraw.Src, nil)
		src = g.scaled
	}

	pix := make([]byte, len(src.Pix))
	copy(pix, src.Pix)
	return &frame.RasterImage{
		Pix:    pix,
		Width:  src.Bounds().Dx(),
		Height: src.Bounds().Dy(),
		Stride: src.Stride,
	}
}

// frameDuration converts the GIF's 10ms delay units to a duration.
func (g *GIF) frameDuration(index int) time.Duration {
	if index >= len(g.src.Delay) {
		return fallbackFrameDelay
	}
	d := time.Duration(g.src.Delay[index]) * 10 * time.Millisecond
	if d <= 0 {
		return fallbackFrameDelay
	}
	return d
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func clearRGBA(img *image.RGBA, rect image.Rectangle) {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := img.Pix[img.PixOffset(rect.Min.X, y):img.PixOffset(rect.Max.X, y)]
		for i := range row {
			row[i] = 0
		}
	}
}
