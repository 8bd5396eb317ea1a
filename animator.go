package animplay

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/animplay/clock"
	"github.com/opd-ai/animplay/decode"
	"github.com/opd-ai/animplay/frame"
	"github.com/opd-ai/animplay/window"
)

// Animator owns the playback of one animation source: the frame store,
// the decoder adapter, the prefetch window, and the playback clock.
//
// Two execution contexts touch an animator. The real-time tick path
// (Advance and the read accessors) never blocks and never decodes; it
// only reads frame slots and moves the playhead. The background decode
// queue performs every rasterizer call and every frame-store write, one
// unit at a time in FIFO order. Replacing the source or disposing the
// animator invalidates queued decode work without waiting for it.
type Animator struct {
	mu       sync.RWMutex
	opts     Options
	disposed bool

	// Current prepared source; replaced wholesale by Prepare.
	session *session

	queue *decodeQueue

	// Observer callbacks, delivered through opts.Dispatch.
	onFirstFrame func(img *frame.RasterImage)
	onLoop       func(completedLoops int)
	onFinished   func()
}

// session binds the components built for one prepared source.
type session struct {
	store      *frame.Store
	adapter    *decode.Adapter
	win        *window.Manager
	clk        *clock.Clock
	frameCount int

	// Decode bookkeeping, touched only from the decode queue goroutine.
	firstDelivered bool
}

// New creates an animator with the given options. The animator owns a
// background decode goroutine from this point on and must be disposed.
func New(opts Options) (*Animator, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":      "New",
		"repeat_policy": opts.Repeat.String(),
		"window":        opts.Window,
		"max_time_step": opts.MaxTimeStep,
	}).Info("Creating animator")

	return &Animator{
		opts:  opts,
		queue: newDecodeQueue(defaultQueueDepth),
	}, nil
}

// Prepare binds the animator to new animation source bytes and begins
// asynchronous decoding, returning as soon as the source is opened.
// Any previous source's in-flight decode work is invalidated and its
// decoder handle released.
//
// Frame rasterization happens on the background queue; ticking before
// the first frame lands is a no-op and reports no new frame.
func (a *Animator) Prepare(source []byte) error {
	if len(source) == 0 {
		return ErrNilSource
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.disposed {
		return ErrDisposed
	}

	// Stale out any decode work for the previous source before touching
	// shared state the queue might still be reading.
	gen := a.queue.invalidate()
	if old := a.session; old != nil {
		old.adapter.Close()
		old.store.Clear()
		logrus.WithFields(logrus.Fields{
			"function": "Prepare",
		}).Debug("Previous animation source replaced")
	}
	a.session = nil

	rasterizer, err := a.opts.OpenRasterizer(source)
	if err != nil {
		return fmt.Errorf("opening animation source: %w", err)
	}

	adapter, err := decode.NewAdapter(rasterizer, a.opts.CanvasWidth, a.opts.CanvasHeight)
	if err != nil {
		return err
	}

	frameCount := adapter.FrameCount()
	if frameCount <= 0 {
		adapter.Close()
		return decode.ErrEmptyAnimation
	}

	win, err := window.NewManager(frameCount, a.opts.Window)
	if err != nil {
		adapter.Close()
		return err
	}

	store := frame.NewStore(frameCount)
	clk, err := clock.New(frameCount, a.opts.MaxTimeStep, a.opts.Repeat, durationLookup(store))
	if err != nil {
		adapter.Close()
		return err
	}
	clk.SetLoopObserver(a.notifyLoop)
	clk.SetFinishedObserver(a.notifyFinished)

	sess := &session{
		store:      store,
		adapter:    adapter,
		win:        win,
		clk:        clk,
		frameCount: frameCount,
	}
	a.session = sess

	canvasW, canvasH := adapter.CanvasSize()
	logrus.WithFields(logrus.Fields{
		"function":    "Prepare",
		"frame_count": frameCount,
		"canvas":      fmt.Sprintf("%dx%d", canvasW, canvasH),
		"windowed":    win.Active(),
	}).Info("Animation source prepared, starting decode")

	a.queue.enqueue(gen, func() {
		a.initialDecodePass(sess, gen)
	})

	return nil
}

// durationLookup adapts a frame store to the clock's duration interface.
// An empty slot yields zero, which the clock treats as "not yet known"
// and stalls on instead of skipping.
func durationLookup(store *frame.Store) clock.DurationFunc {
	return func(index int) time.Duration {
		slot := store.Get(index)
		if slot == nil {
			return 0
		}
		return slot.Duration
	}
}

// initialDecodePass fills the first resident set: the whole loop in eager
// mode, or the playhead plus the preload window in windowed mode. Runs on
// the decode queue.
func (a *Animator) initialDecodePass(sess *session, gen uint64) {
	for _, idx := range sess.win.InitialIndices(0) {
		if !a.queue.matches(gen) {
			logrus.WithFields(logrus.Fields{
				"function": "initialDecodePass",
			}).Debug("Initial decode pass abandoned, source replaced")
			return
		}
		a.decodeIndex(sess, idx, gen)
	}

	// Eager mode needs the decoder only for this one pass; windowed mode
	// keeps refilling evicted frames and holds the handle until disposal.
	if !sess.win.Active() {
		sess.adapter.Close()
		logrus.WithFields(logrus.Fields{
			"function":    "initialDecodePass",
			"frame_count": sess.frameCount,
		}).Info("Eager decode pass complete, decoder handle released")
	}
}

// decodeIndex rasterizes one frame into the store. Failures leave the
// slot as-is; the window walk retries the index when it comes around
// again. Runs on the decode queue.
//
// The generation is re-checked after the rasterize step, not just before
// it: a source replaced while this frame was decoding must not have the
// result published to the store or reach the first-frame callback.
func (a *Animator) decodeIndex(sess *session, idx int, gen uint64) {
	f, err := sess.adapter.Decode(idx)
	if err != nil {
		return
	}
	if !a.queue.matches(gen) {
		logrus.WithFields(logrus.Fields{
			"function": "decodeIndex",
			"index":    idx,
		}).Trace("Discarding decode result for replaced source")
		return
	}
	sess.store.Set(idx, f)

	if !sess.firstDelivered {
		sess.firstDelivered = true
		a.notifyFirstFrame(f.Image)
	}
}

// advanceWindow evicts the frame the playhead just left and schedules the
// next missing in-window decode. Runs on the decode queue so the tick
// path never pays for either.
func (a *Animator) advanceWindow(sess *session, head int, gen uint64) {
	if evict, ok := sess.win.EvictTarget(head); ok {
		if f := sess.store.Get(evict); f.IsDecoded() {
			sess.store.Set(evict, f.Evicted())
			logrus.WithFields(logrus.Fields{
				"function": "advanceWindow",
				"index":    evict,
				"playhead": head,
			}).Trace("Evicted frame behind playhead")
		}
	}

	decoded := func(i int) bool { return sess.store.Get(i).IsDecoded() }
	if missing, ok := sess.win.NextMissing(head, decoded); ok {
		a.decodeIndex(sess, missing, gen)
	}
}

// Advance consumes one elapsed-time tick from the display refresh signal
// and reports whether a new frame is ready to render.
//
// Safe to call from a real-time callback: it never blocks on decode work,
// only moves the playhead and, in windowed mode, posts eviction/fill
// bookkeeping to the background queue. Ticks on an unprepared or disposed
// animator are no-ops.
func (a *Animator) Advance(elapsed time.Duration) bool {
	a.mu.RLock()
	sess := a.session
	disposed := a.disposed
	a.mu.RUnlock()

	if disposed || sess == nil {
		return false
	}

	changed := sess.clk.Tick(elapsed)
	if changed && sess.win.Active() {
		head := sess.clk.CurrentFrame()
		gen := a.queue.currentGeneration()
		a.queue.enqueue(gen, func() {
			a.advanceWindow(sess, head, gen)
		})
	}
	return changed
}

// FrameImage returns the decoded raster at index, or nil when the index
// is out of range or the frame is not resident.
func (a *Animator) FrameImage(index int) *frame.RasterImage {
	a.mu.RLock()
	sess := a.session
	a.mu.RUnlock()

	if sess == nil {
		return nil
	}
	slot := sess.store.Get(index)
	if !slot.IsDecoded() {
		return nil
	}
	return slot.Image
}

// FrameDuration returns the display duration of the frame at index, or
// zero while the duration is not yet known (never decoded or out of
// range). Evicted frames keep their known duration.
func (a *Animator) FrameDuration(index int) time.Duration {
	a.mu.RLock()
	sess := a.session
	a.mu.RUnlock()

	if sess == nil {
		return 0
	}
	slot := sess.store.Get(index)
	if slot == nil {
		return 0
	}
	return slot.Duration
}

// CurrentFrame returns the playhead index, or zero before Prepare.
func (a *Animator) CurrentFrame() int {
	a.mu.RLock()
	sess := a.session
	a.mu.RUnlock()

	if sess == nil {
		return 0
	}
	return sess.clk.CurrentFrame()
}

// CurrentFrameImage returns the raster the view should render this tick,
// or nil when the current frame is not decoded yet.
func (a *Animator) CurrentFrameImage() *frame.RasterImage {
	return a.FrameImage(a.CurrentFrame())
}

// FrameCount returns the total number of frames, or zero before Prepare.
func (a *Animator) FrameCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return 0
	}
	return a.session.frameCount
}

// CompletedLoops returns how many full loops have played.
func (a *Animator) CompletedLoops() int {
	a.mu.RLock()
	sess := a.session
	a.mu.RUnlock()

	if sess == nil {
		return 0
	}
	return sess.clk.CompletedLoops()
}

// IsFinished reports whether the repeat policy has been satisfied.
func (a *Animator) IsFinished() bool {
	a.mu.RLock()
	sess := a.session
	a.mu.RUnlock()

	return sess != nil && sess.clk.IsFinished()
}

// DecodedFrameCount returns how many frames are currently resident.
func (a *Animator) DecodedFrameCount() int {
	a.mu.RLock()
	sess := a.session
	a.mu.RUnlock()

	if sess == nil {
		return 0
	}
	return sess.store.DecodedCount()
}

// SetFirstFrameCallback registers a callback for the first decoded frame
// of a prepared source, delivered through the configured dispatcher.
func (a *Animator) SetFirstFrameCallback(fn func(img *frame.RasterImage)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onFirstFrame = fn
}

// SetLoopCallback registers a callback invoked once per completed loop
// with the running loop count.
func (a *Animator) SetLoopCallback(fn func(completedLoops int)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onLoop = fn
}

// SetFinishedCallback registers a callback invoked exactly once when
// playback finishes. View layers use it to stop their refresh
// subscription.
func (a *Animator) SetFinishedCallback(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onFinished = fn
}

func (a *Animator) notifyFirstFrame(img *frame.RasterImage) {
	a.mu.RLock()
	fn := a.onFirstFrame
	dispatch := a.opts.Dispatch
	a.mu.RUnlock()

	if fn != nil {
		dispatch(func() { fn(img) })
	}
}

func (a *Animator) notifyLoop(completedLoops int) {
	a.mu.RLock()
	fn := a.onLoop
	dispatch := a.opts.Dispatch
	a.mu.RUnlock()

	logrus.WithFields(logrus.Fields{
		"function":        "notifyLoop",
		"completed_loops": completedLoops,
	}).Debug("Animation loop completed")

	if fn != nil {
		dispatch(func() { fn(completedLoops) })
	}
}

func (a *Animator) notifyFinished() {
	a.mu.RLock()
	fn := a.onFinished
	dispatch := a.opts.Dispatch
	a.mu.RUnlock()

	if fn != nil {
		dispatch(fn)
	}
}

// Dispose tears the animator down: queued decode work is invalidated, the
// decode goroutine stops, the decoder handle is released (exactly once,
// even if an eager pass already released it), and all frame memory is
// dropped. Ticks arriving after Dispose are no-ops. Idempotent and
// fire-and-forget safe: nothing waits on in-flight decode work.
func (a *Animator) Dispose() {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}
	a.disposed = true
	sess := a.session
	a.session = nil
	a.mu.Unlock()

	a.queue.stop()
	if sess != nil {
		sess.adapter.Close()
		sess.store.Clear()
	}

	logrus.WithFields(logrus.Fields{
		"function": "Dispose",
	}).Info("Animator disposed")
}
