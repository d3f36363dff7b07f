// FilePath: internal/state/state.go
package state

import (
	"sync"
	"time"

	"github.com/espview/hub/internal/models"
)

// Store keeps the latest known snapshot per device, in memory only. Entries
// are created lazily on first update and never removed for the lifetime of
// the process.
type Store struct {
	mu      sync.RWMutex
	devices map[string]*models.DeviceState
}

// NewStore creates an empty device state store.
func NewStore() *Store {
	return &Store{
		devices: make(map[string]*models.DeviceState),
	}
}

// SetAnalog records the latest analog value for a device. Last write wins.
func (s *Store) SetAnalog(deviceID string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.upsertLocked(deviceID)
	st.AnalogValue = &value
	st.LastUpdatedAt = time.Now().UTC()
}

// SetImageRef records the reference to the latest stored image for a device.
func (s *Store) SetImageRef(deviceID, ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.upsertLocked(deviceID)
	st.ImageRef = &ref
	st.LastUpdatedAt = time.Now().UTC()
}

// Get returns a copy of the device snapshot. The second return is false if
// the device has never reported.
func (s *Store) Get(deviceID string) (models.DeviceState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.devices[deviceID]
	if !ok {
		return models.DeviceState{}, false
	}
	return *st, true
}

// Analog returns the latest analog value for a device. The second return is
// false if no analog sample was ever reported, so "never reported" stays
// distinct from a reported zero.
func (s *Store) Analog(deviceID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.devices[deviceID]
	if !ok || st.AnalogValue == nil {
		return 0, false
	}
	return *st.AnalogValue, true
}

// ImageRef returns the reference to the latest image for a device.
func (s *Store) ImageRef(deviceID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.devices[deviceID]
	if !ok || st.ImageRef == nil {
		return "", false
	}
	return *st.ImageRef, true
}

func (s *Store) upsertLocked(deviceID string) *models.DeviceState {
	st, ok := s.devices[deviceID]
	if !ok {
		st = &models.DeviceState{DeviceID: deviceID}
		s.devices[deviceID] = st
	}
	return st
}
