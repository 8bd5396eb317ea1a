package frame

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Store is a fixed-length, index-addressed container of frame slots.
//
// Concurrency contract: a single writer (the decode task) and any number
// of readers (the tick path, the view layer). Every slot is an atomic
// pointer, so point reads and point writes are individually torn-free.
// There is no ordering guarantee between writes to different indices.
type Store struct {
	slots atomic.Pointer[[]atomic.Pointer[Frame]]
}

// NewStore creates a store with capacity for n frames. All slots start nil.
func NewStore(n int) *Store {
	s := &Store{}
	s.Reserve(n)
	return s
}

// Reserve replaces the slot array with a fresh one of length n, discarding
// any frames currently held. Called when the frame count of a new source
// becomes known.
func (s *Store) Reserve(n int) {
	if n < 0 {
		n = 0
	}
	slots := make([]atomic.Pointer[Frame], n)
	s.slots.Store(&slots)

	logrus.WithFields(logrus.Fields{
		"function":    "Reserve",
		"frame_count": n,
	}).Debug("Frame store capacity reserved")
}

// Len returns the number of slots in the store.
func (s *Store) Len() int {
	slots := s.slots.Load()
	if slots == nil {
		return 0
	}
	return len(*slots)
}

// Get returns the frame at index i, or nil if the index is out of range
// or the slot has never been written. Safe to call from any goroutine.
func (s *Store) Get(i int) *Frame {
	slots := s.slots.Load()
	if slots == nil || i < 0 || i >= len(*slots) {
		return nil
	}
	return (*slots)[i].Load()
}

// Set publishes a frame at index i, replacing any previous value wholesale.
// Out-of-range indices are ignored. Intended to be called only from the
// single decode task.
func (s *Store) Set(i int, f *Frame) {
	slots := s.slots.Load()
	if slots == nil || i < 0 || i >= len(*slots) {
		logrus.WithFields(logrus.Fields{
			"function": "Set",
			"index":    i,
		}).Warn("Ignoring frame write to out-of-range slot")
		return
	}
	(*slots)[i].Store(f)
}

// Clear drops every frame while keeping the slot array's length, so that
// indices remain valid but all pixel buffers become collectable.
func (s *Store) Clear() {
	slots := s.slots.Load()
	if slots == nil {
		return
	}
	for i := range *slots {
		(*slots)[i].Store(nil)
	}
}

// DecodedCount returns how many slots currently hold a decoded raster.
// Used for progress reporting; the value may be stale by the time it is
// observed.
func (s *Store) DecodedCount() int {
	slots := s.slots.Load()
	if slots == nil {
		return 0
	}
	count := 0
	for i := range *slots {
		if (*slots)[i].Load().IsDecoded() {
			count++
		}
	}
	return count
}
