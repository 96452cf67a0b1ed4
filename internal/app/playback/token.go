package playback

import "sync"

// cancelToken belongs to exactly one replay session. Cancelling it is final.
type cancelToken struct {
	once sync.Once
	done chan struct{}
}

func newCancelToken() *cancelToken {
	return &cancelToken{done: make(chan struct{})}
}

func (t *cancelToken) cancel() {
	t.once.Do(func() { close(t.done) })
}

func (t *cancelToken) cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
