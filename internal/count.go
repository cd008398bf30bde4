package internal

import (
	"sync/atomic"
)

// Counter tracks a running byte total.
type Counter struct {
	n atomic.Int64
}

// Add adds n and returns the new total.
func (r *Counter) Add(n int64) int64 {
	return r.n.Add(n)
}

func (r *Counter) Get() int64 {
	return r.n.Load()
}

func (r *Counter) Reset() {
	r.n.Store(0)
}
