package auth

import "sync"

// ExpiryRelay forwards the HTTP client's token-expired signal to subscribers.
// Like TokenHolder it decouples construction order: the client is built with
// the relay, and the machine subscribes when it is constructed later.
type ExpiryRelay struct {
	mu        sync.Mutex
	listeners []func()
}

func NewExpiryRelay() *ExpiryRelay {
	return &ExpiryRelay{}
}

// TokenExpired satisfies api.TokenExpiryHandler.
func (r *ExpiryRelay) TokenExpired() {
	r.mu.Lock()
	listeners := make([]func(), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (r *ExpiryRelay) Subscribe(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
