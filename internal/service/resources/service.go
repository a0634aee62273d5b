package resources

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	resourceRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/resource"
	"github.com/m04kA/SMC-BookingEngine/internal/service/resources/models"
)

// Service чтение ресурсов, расписаний и услуг
type Service struct {
	resourceRepo ResourceRepository
	txManager    TransactionManager
	policy       domain.BookingPolicy
	logger       Logger
}

// NewService создает новый экземпляр сервиса ресурсов
func NewService(
	resourceRepo ResourceRepository,
	txManager TransactionManager,
	policy domain.BookingPolicy,
	logger Logger,
) *Service {
	return &Service{
		resourceRepo: resourceRepo,
		txManager:    txManager,
		policy:       policy,
		logger:       logger,
	}
}

// GetResource ресурс с недельным расписанием (для специалиста) и правилами бронирования
func (s *Service) GetResource(ctx context.Context, resourceID int64) (*models.ResourceResponse, error) {
	var (
		resource *domain.Resource
		schedule *domain.Schedule
	)

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		resource, err = s.resourceRepo.GetByID(txCtx, resourceID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				s.logger.Warn("GetResource: resource id=%d not found", resourceID)
				return domain.ResourceUnavailableError(resourceID)
			}
			s.logger.Error("GetResource: failed to get resource id=%d: %v", resourceID, err)
			return fmt.Errorf("%w: GetByID: %w", ErrInternal, err)
		}

		if resource.Kind != domain.ResourceProfessional {
			return nil
		}

		schedule, err = s.resourceRepo.GetSchedule(txCtx, resourceID)
		if err != nil {
			s.logger.Error("GetResource: failed to get schedule for resource id=%d: %v", resourceID, err)
			return fmt.Errorf("%w: GetSchedule: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	return models.FromDomainResource(resource, schedule, s.policy), nil
}

// GetService услуга специалиста. Услуга другого специалиста считается ненайденной.
func (s *Service) GetService(ctx context.Context, resourceID, serviceID int64) (*models.ServiceResponse, error) {
	var service *domain.Service

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		service, err = s.resourceRepo.GetService(txCtx, serviceID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrServiceNotFound) {
				return fmt.Errorf("%w: service %d", domain.ErrServiceNotFound, serviceID)
			}
			s.logger.Error("GetService: failed to get service id=%d: %v", serviceID, err)
			return fmt.Errorf("%w: GetService: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	if service.ProfessionalID != resourceID {
		s.logger.Warn("GetService: service id=%d belongs to resource id=%d, not %d",
			serviceID, service.ProfessionalID, resourceID)
		return nil, fmt.Errorf("%w: service %d of resource %d", domain.ErrServiceNotFound, serviceID, resourceID)
	}

	return models.FromDomainService(service), nil
}
