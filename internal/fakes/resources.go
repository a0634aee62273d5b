package fakes

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	resourceRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/resource"
)

// ResourceStore повторяет поведение resource.Repository
type ResourceStore struct {
	mu        sync.Mutex
	resources map[int64]*domain.Resource
	schedules map[int64]*domain.Schedule
	services  map[int64]*domain.Service
}

func NewResourceStore() *ResourceStore {
	return &ResourceStore{
		resources: make(map[int64]*domain.Resource),
		schedules: make(map[int64]*domain.Schedule),
		services:  make(map[int64]*domain.Service),
	}
}

func (s *ResourceStore) AddResource(r *domain.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	s.resources[r.ID] = &c
}

func (s *ResourceStore) AddSchedule(sc *domain.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sc.ResourceID] = sc
}

func (s *ResourceStore) AddService(svc *domain.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *svc
	s.services[svc.ID] = &c
}

func (s *ResourceStore) GetByID(_ context.Context, id int64) (*domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resources[id]
	if !ok {
		return nil, resourceRepo.ErrResourceNotFound
	}
	c := *r
	return &c, nil
}

func (s *ResourceStore) GetSchedule(_ context.Context, resourceID int64) (*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc, ok := s.schedules[resourceID]; ok {
		return sc, nil
	}
	return domain.NewSchedule(resourceID), nil
}

func (s *ResourceStore) GetService(_ context.Context, serviceID int64) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.services[serviceID]
	if !ok {
		return nil, resourceRepo.ErrServiceNotFound
	}
	c := *svc
	return &c, nil
}

func (s *ResourceStore) Occupy(_ context.Context, resourceID, bookingID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resources[resourceID]
	if !ok || r.Kind != domain.ResourceRoom {
		return resourceRepo.ErrResourceNotFound
	}
	if r.OccupiedByBookingID != nil && *r.OccupiedByBookingID != bookingID {
		return resourceRepo.ErrRoomOccupied
	}
	id := bookingID
	r.OccupiedByBookingID = &id
	return nil
}

func (s *ResourceStore) Release(_ context.Context, resourceID, bookingID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resources[resourceID]
	if !ok || r.Kind != domain.ResourceRoom {
		return nil
	}
	if r.OccupiedByBookingID != nil && *r.OccupiedByBookingID == bookingID {
		r.OccupiedByBookingID = nil
	}
	return nil
}
