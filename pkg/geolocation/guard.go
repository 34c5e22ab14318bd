package geolocation

import "sync/atomic"

// Guard lets at most one call run at a time and silently drops the others.
// The zero value is ready to use.
type Guard struct {
	busy atomic.Bool
}

// Do runs fn unless another Do is in progress. It reports whether fn ran.
// The guard is released when fn returns, even by panic.
func (g *Guard) Do(fn func()) bool {
	if !g.busy.CompareAndSwap(false, true) {
		return false
	}
	defer g.busy.Store(false)
	fn()
	return true
}

// Busy reports whether a call is in progress.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
