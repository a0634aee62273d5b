package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"conflict", domain.SlotUnavailableError(1, domain.Interval{}, nil), http.StatusConflict},
		{"transition", domain.InvalidTransitionError(5, domain.StatusScheduled, domain.StatusCompleted), http.StatusConflict},
		{"cannot delete", domain.ErrCannotDelete, http.StatusConflict},
		{"resource", domain.ResourceUnavailableError(3), http.StatusNotFound},
		{"booking", fmt.Errorf("%w: booking 9", domain.ErrBookingNotFound), http.StatusNotFound},
		{"validation", domain.ErrCapacityExceeded, http.StatusBadRequest},
		{"past", domain.ErrDateInPast, http.StatusBadRequest},
		{"timeout", domain.ErrPersistenceTimeout, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.True(t, RespondDomainError(w, tt.err))
			assert.Equal(t, tt.status, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, http.StatusText(tt.status), body.Error)
		})
	}

	w := httptest.NewRecorder()
	assert.False(t, RespondDomainError(w, errors.New("boom")))
	assert.Zero(t, w.Body.Len())
}

func TestRespondDomainError_MessageNamesStates(t *testing.T) {
	w := httptest.NewRecorder()
	RespondDomainError(w, domain.InvalidTransitionError(5, domain.StatusScheduled, domain.StatusCompleted))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "booking 5 cannot move from scheduled to completed")
}

func TestRespondJSON_NilBody(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
