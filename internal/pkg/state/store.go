package state

import (
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

// Store is the per device register of page, sensor and alarm state.
type Store struct {
	mu      sync.RWMutex
	devices map[string]model.DeviceState
	logger  *zap.Logger
}

func NewStore() *Store {
	return &Store{
		devices: make(map[string]model.DeviceState),
		logger:  zap.L(),
	}
}

// Get returns a copy of the stored state, or a fresh default when nothing was written yet.
func (s *Store) Get(id string) model.DeviceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.devices[id]; ok {
		return st.Clone()
	}
	return model.NewDeviceState()
}

// MergeUpdate applies the present fields of partial to the device record and returns the result.
// The record is created with the default page on first write.
func (s *Store) MergeUpdate(id string, partial model.DeviceState) model.DeviceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.devices[id]
	if !ok {
		s.logger.Debug("creating device state", zap.String("device", id))
		current = model.NewDeviceState()
	}
	current.Merge(partial)
	s.devices[id] = current
	return current.Clone()
}

// Snapshot returns copies of every stored record.
func (s *Store) Snapshot() map[string]model.DeviceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.DeviceState, len(s.devices))
	for id, st := range s.devices {
		out[id] = st.Clone()
	}
	return out
}
