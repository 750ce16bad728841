package auth

import "sync"

// TokenHolder is the read-through slot the HTTP client consults when building
// a request. The machine is its only writer; the client only ever reads a
// snapshot, so a swap mid-flight never changes requests already sent.
//
// It exists as a separate value so the composition root can build the HTTP
// client before the machine without an initialization-order hazard.
type TokenHolder struct {
	mu    sync.RWMutex
	token string
}

func NewTokenHolder() *TokenHolder {
	return &TokenHolder{}
}

// CurrentToken satisfies api.TokenProvider.
func (h *TokenHolder) CurrentToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *TokenHolder) Set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func (h *TokenHolder) Clear() {
	h.Set("")
}
