package get_resource

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/resources/models"
)

type ResourceService interface {
	GetResource(ctx context.Context, resourceID int64) (*models.ResourceResponse, error)
	GetService(ctx context.Context, resourceID, serviceID int64) (*models.ServiceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
