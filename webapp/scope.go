package webapp

import "sync"

// Scope is a string map that an action can read and change, used for session and flash data.
// It is safe to use from the goroutine of an async result.
type Scope struct {
	values  map[string]string
	dirty   bool
	cleared bool
	lock    sync.Mutex
}

func newScope(initial map[string]string) *Scope {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Scope{values: values}
}

func (s *Scope) Get(key string) (string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Scope) Put(key, value string) {
	s.lock.Lock()
	s.values[key] = value
	s.dirty = true
	s.lock.Unlock()
}

func (s *Scope) Remove(key string) {
	s.lock.Lock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
	s.lock.Unlock()
}

// Clear removes every value.
func (s *Scope) Clear() {
	s.lock.Lock()
	s.values = make(map[string]string)
	s.dirty = true
	s.cleared = true
	s.lock.Unlock()
}

// Values returns a copy of the current contents.
func (s *Scope) Values() map[string]string {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := make(map[string]string, len(s.values))
	for k, v := range s.values {
		ret[k] = v
	}
	return ret
}

// IsDirty returns true if anything was changed since the scope was created.
func (s *Scope) IsDirty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.dirty
}

func (s *Scope) wasCleared() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cleared
}
