package securestore

import "sync"

// MemStore keeps the credential in process memory only. It backs tests and
// the degraded mode entered when the durable backend fails to persist.
type MemStore struct {
	mu      sync.Mutex
	token   string
	present bool
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Put(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.present = true
	return nil
}

func (s *MemStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return "", nil
	}
	return s.token, nil
}

func (s *MemStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.present = false
	return nil
}
