package get_resource_bookings

import (
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// date задает один день и имеет приоритет над startDate/endDate.
func ToServiceRequest(
	resourceID int64,
	startDateStr string,
	endDateStr string,
	dateStr string,
	statusStr string,
	includeInactiveStr string,
) (*models.ListResourceBookingsRequest, error) {
	req := &models.ListResourceBookingsRequest{
		ResourceID:      resourceID,
		IncludeInactive: false, // По умолчанию только активные
	}

	if startDateStr != "" {
		req.StartDate = &startDateStr
	}
	if endDateStr != "" {
		req.EndDate = &endDateStr
	}
	if dateStr != "" {
		req.StartDate = &dateStr
		req.EndDate = &dateStr
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
