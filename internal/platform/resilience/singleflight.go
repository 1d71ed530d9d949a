package resilience

import "sync"

// SingleFlight deduplicates concurrent calls for the same key. Followers
// block until the leader finishes and receive its result; the third return
// value reports whether the result was shared.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flightCall
}

type flightCall struct {
	done chan struct{}
	val  any
	err  error
}

func (f *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	f.mu.Lock()
	if f.inflight == nil {
		f.inflight = make(map[string]*flightCall)
	}

	if existing, ok := f.inflight[key]; ok {
		f.mu.Unlock()
		<-existing.done
		return existing.val, existing.err, true
	}

	call := &flightCall{done: make(chan struct{})}
	f.inflight[key] = call
	f.mu.Unlock()

	call.val, call.err = fn()
	close(call.done)

	f.mu.Lock()
	delete(f.inflight, key)
	f.mu.Unlock()

	return call.val, call.err, false
}
