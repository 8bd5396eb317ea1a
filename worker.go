package animplay

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// task is one unit of decode work tagged with the generation it belongs
// to. Tasks from an older generation are discarded unexecuted.
type task struct {
	generation uint64
	run        func()
}

// decodeQueue is a serial FIFO work queue backed by a single goroutine.
//
// It exists because native decoders are not reentrant: all rasterization
// for one animator must happen on one goroutine, one unit at a time, in
// the order it was requested. The generation counter implements
// cancellation without blocking: bumping it makes every queued and
// in-flight-but-not-started task a no-op, so replacing the source or
// disposing the animator never waits on decode work.
type decodeQueue struct {
	tasks      chan task
	done       chan struct{}
	generation atomic.Uint64
	stopOnce   sync.Once
}

func newDecodeQueue(depth int) *decodeQueue {
	q := &decodeQueue{
		tasks: make(chan task, depth),
		done:  make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *decodeQueue) loop() {
	for {
		select {
		case <-q.done:
			return
		case t := <-q.tasks:
			if t.generation != q.generation.Load() {
				logrus.WithFields(logrus.Fields{
					"function":        "loop",
					"task_generation": t.generation,
				}).Trace("Discarding stale decode task")
				continue
			}
			t.run()
		}
	}
}

// currentGeneration returns the generation new tasks should carry.
func (q *decodeQueue) currentGeneration() uint64 {
	return q.generation.Load()
}

// matches reports whether gen is still the live generation. Decode loops
// check this between steps so a long pass stops promptly after
// invalidation.
func (q *decodeQueue) matches(gen uint64) bool {
	return q.generation.Load() == gen
}

// enqueue adds a task for the given generation without blocking. When the
// buffer is full the task is dropped; the window walk will request the
// same work again on a later advance.
func (q *decodeQueue) enqueue(gen uint64, run func()) bool {
	select {
	case q.tasks <- task{generation: gen, run: run}:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"function": "enqueue",
			"depth":    cap(q.tasks),
		}).Warn("Decode queue full, dropping task")
		return false
	}
}

// invalidate discards all pending work and returns the new generation.
func (q *decodeQueue) invalidate() uint64 {
	return q.generation.Add(1)
}

// stop shuts the queue down. Pending tasks are abandoned; the running
// task, if any, finishes on its own. Safe to call more than once.
func (q *decodeQueue) stop() {
	q.stopOnce.Do(func() {
		q.invalidate()
		close(q.done)
	})
}
