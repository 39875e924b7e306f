package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValidateRequiresFutureDate(t *testing.T) {
	e := NewEvent("Park cleanup", "Bring gloves", uuid.New(), time.Now().Add(48*time.Hour))
	assert.NoError(t, e.Validate())

	past := NewEvent("Park cleanup", "Bring gloves", uuid.New(), time.Now().Add(-time.Hour))
	assert.Error(t, past.Validate())
}

func TestHasCapacityFor(t *testing.T) {
	e := NewEvent("Town hall", "", uuid.New(), time.Now().Add(time.Hour))

	// No limit set means unlimited capacity
	assert.True(t, e.HasCapacityFor(1000))

	limit := 2
	e.MaxAttendees = &limit
	assert.True(t, e.HasCapacityFor(0))
	assert.True(t, e.HasCapacityFor(1))
	assert.False(t, e.HasCapacityFor(2))
}

func TestIsOrganizer(t *testing.T) {
	organizerID := uuid.New()
	e := NewEvent("Meetup", "", organizerID, time.Now().Add(time.Hour))

	assert.True(t, e.IsOrganizer(organizerID))
	assert.False(t, e.IsOrganizer(uuid.New()))
}

func TestAttendanceStatusFromString(t *testing.T) {
	cases := map[string]AttendanceStatus{
		"attending":     StatusAttending,
		"maybe":         StatusMaybe,
		"not_attending": StatusNotAttending,
	}
	for input, want := range cases {
		got, ok := AttendanceStatusFromString(input)
		require.True(t, ok)
		assert.Equal(t, want, got)
		assert.Equal(t, input, got.String())
	}

	_, ok := AttendanceStatusFromString("declined")
	assert.False(t, ok)
}
