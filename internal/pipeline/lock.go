package pipeline

import "sync/atomic"

// RunLock lets at most one chunk run proceed at a time without blocking the
// callers that lose the race. It remembers which request holds it.
type RunLock struct {
	holder atomic.Pointer[Request]
}

// TryAcquire takes the lock for req. It returns false if another run holds it.
func (l *RunLock) TryAcquire(req Request) bool {
	return l.holder.CompareAndSwap(nil, &req)
}

// Holder returns the request currently holding the lock.
func (l *RunLock) Holder() (Request, bool) {
	req := l.holder.Load()
	if req == nil {
		return Request{}, false
	}
	return *req, true
}

// Release frees the lock. Only the successful acquirer may call it.
func (l *RunLock) Release() {
	l.holder.Store(nil)
}
