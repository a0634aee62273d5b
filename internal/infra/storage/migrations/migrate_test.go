package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

func TestList_Ordered(t *testing.T) {
	names, err := List()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_resources.sql", "002_bookings.sql", "003_notifications.sql"}, names)
}

func TestBookingsHasExclusionConstraint(t *testing.T) {
	body, err := files.ReadFile("002_bookings.sql")
	require.NoError(t, err)

	sql := string(body)
	assert.True(t, strings.Contains(sql, "EXCLUDE USING gist (resource_id WITH =, period WITH &&)"))

	// условие ограничения должно совпадать с активными статусами домена
	quoted := make([]string, 0, len(domain.AllActiveStatuses))
	for _, s := range domain.AllActiveStatuses {
		quoted = append(quoted, "'"+string(s)+"'")
	}
	assert.Contains(t, sql, "status IN ("+strings.Join(quoted, ", ")+")")
}
