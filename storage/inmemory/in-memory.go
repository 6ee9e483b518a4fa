// Package inmemory keeps the collector's last reading in process memory.
package inmemory

import (
	"sync"

	"github.com/and161185/fill-monitor/model"
)

// Slot stores one reading. Set replaces the whole value, so readers never see a
// mix of an old and a new reading.
type Slot struct {
	mu      sync.RWMutex
	reading model.Reading
	ok      bool
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Set overwrites the stored reading.
func (s *Slot) Set(r model.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading = r
	s.ok = true
}

// Get returns the stored reading and whether one was ever set.
func (s *Slot) Get() (model.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reading, s.ok
}
