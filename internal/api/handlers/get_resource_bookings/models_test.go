package get_resource_bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToServiceRequest(t *testing.T) {
	req, err := ToServiceRequest(3, "2024-03-01", "2024-03-31", "", "confirmed", "true")
	require.NoError(t, err)
	assert.Equal(t, int64(3), req.ResourceID)
	assert.Equal(t, "2024-03-01", *req.StartDate)
	assert.Equal(t, "2024-03-31", *req.EndDate)
	assert.Equal(t, "confirmed", *req.Status)
	assert.True(t, req.IncludeInactive)

	req, err = ToServiceRequest(3, "2024-03-01", "", "2024-03-04", "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", *req.StartDate)
	assert.Equal(t, "2024-03-04", *req.EndDate)
	assert.Nil(t, req.Status)
	assert.False(t, req.IncludeInactive)

	_, err = ToServiceRequest(3, "", "", "", "", "maybe")
	assert.Error(t, err)
}
