package serialcom

import "sync"

// ErrorState holds the text of the most recent failure.
type ErrorState struct {
	mu   sync.RWMutex
	text string
}

func (s *ErrorState) Set(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

func (s *ErrorState) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

func (s *ErrorState) Clear() {
	s.Set("")
}

// clearIf empties the state only when it still holds text.
func (s *ErrorState) clearIf(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.text != text {
		return false
	}
	s.text = ""
	return true
}
