package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"car-telemetry/backend/internal/domain"
)

// MemoryStore implements Store without external services. It backs the
// "memory" storage backend for local development and most of the test suite.
type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]domain.Vehicle
	order    []string // creation order for stable listings
	samples  map[string][]domain.TelemetrySample
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles: make(map[string]domain.Vehicle),
		samples:  make(map[string][]domain.TelemetrySample),
	}
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) CreateVehicle(_ context.Context, v *domain.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[v.ID]; !ok {
		s.order = append(s.order, v.ID)
	}
	s.vehicles[v.ID] = *v
	return nil
}

func (s *MemoryStore) ListActiveVehicles(_ context.Context) ([]domain.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Vehicle
	for _, id := range s.order {
		if v := s.vehicles[id]; v.IsActive {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListActiveVehicleIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, id := range s.order {
		if s.vehicles[id].IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryStore) GetVehicle(_ context.Context, id string) (*domain.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (s *MemoryStore) UpdateVehicle(_ context.Context, v *domain.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.vehicles[v.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Name = v.Name
	cur.Model = v.Model
	cur.Year = v.Year
	cur.LicensePlate = v.LicensePlate
	s.vehicles[v.ID] = cur
	return nil
}

func (s *MemoryStore) DeactivateVehicle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return ErrNotFound
	}
	v.IsActive = false
	s.vehicles[id] = v
	return nil
}

func (s *MemoryStore) BatchInsert(_ context.Context, samples []*domain.TelemetrySample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range samples {
		s.samples[t.VehicleID] = append(s.samples[t.VehicleID], *t)
	}
	return nil
}

func (s *MemoryStore) RecentTelemetry(_ context.Context, vehicleID string, limit int) ([]domain.TelemetrySample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.samples[vehicleID]
	out := make([]domain.TelemetrySample, len(history))
	copy(out, history)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) TelemetrySince(_ context.Context, vehicleID string, from time.Time) ([]domain.TelemetrySample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TelemetrySample
	for _, t := range s.samples[vehicleID] {
		if !t.Timestamp.Before(from) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
