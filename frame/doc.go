// Package frame defines the decoded raster frame type and the slot store
// that holds the bounded working set of an animation's frames.
//
// The Store is the single shared structure between the background decode
// task and the real-time tick path. It is written by exactly one goroutine
// (the decode task) and read by any number of others without a lock: each
// slot is an atomic pointer, so a reader always observes either the old
// frame value or the new one, never a torn mix of the two.
//
// A Frame with a nil Image is a placeholder: its index is reserved and its
// duration may already be known, but the pixel data is either not yet
// decoded or has been evicted to keep memory bounded.
package frame
