package oocsi

import (
	"maps"
	"sync"
)

// Message is one decoded OOCSI message.
type Message map[string]Value

// Clone returns a shallow copy of msg. Values are never mutated in place,
// so sharing nested values is safe.
func (msg Message) Clone() Message {
	if msg == nil {
		return Message{}
	}
	return maps.Clone(msg)
}

// Store is the single-slot "last message" holder. A new message replaces the
// previous one; there is no queue. The mapping and the new-data flag are
// always read and written together.
type Store struct {
	mu    sync.Mutex
	msg   Message
	fresh bool
}

// Set replaces the last message and marks it as new.
func (s *Store) Set(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg.Clone()
	s.fresh = true
}

// Reset empties the slot and clears the new-data flag.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = Message{}
	s.fresh = false
}

// Snapshot returns a copy of the last message and the new-data flag without
// changing either.
func (s *Store) Snapshot() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg.Clone(), s.fresh
}

// Take returns the same snapshot as Snapshot and clears the new-data flag.
func (s *Store) Take() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := s.fresh
	s.fresh = false
	return s.msg.Clone(), fresh
}

// Lookup returns the value stored under key in the last message.
func (s *Store) Lookup(key string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.msg[key]
	return v, ok && !v.IsNull()
}

func (s *Store) GetString(key, def string) string {
	if v, ok := s.Lookup(key); ok {
		if str, ok := v.AsString(); ok {
			return str
		}
	}
	return def
}

func (s *Store) GetNumber(key string, def float64) float64 {
	if v, ok := s.Lookup(key); ok {
		if n, ok := v.AsNumber(); ok {
			return n
		}
	}
	return def
}

func (s *Store) GetBool(key string, def bool) bool {
	if v, ok := s.Lookup(key); ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return def
}

// GetText returns any value under key rendered as text, or def.
func (s *Store) GetText(key, def string) string {
	if v, ok := s.Lookup(key); ok {
		return v.Text()
	}
	return def
}
