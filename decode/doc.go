// Package decode wraps a native frame rasterizer behind a small adapter
// suitable for a single background decode task.
//
// The Rasterizer interface is the boundary to whatever produces pixels
// for a frame index: the in-repo GIF implementation, or an external
// vector/bodymovin rasterizer supplied by the caller. Rasterizers are
// stateful and not reentrant; every call for one animation instance must
// come from the same serial queue. The Adapter enforces the lifetime
// side of that contract: it owns the rasterizer handle and releases it
// exactly once no matter how many paths race to close it.
package decode
