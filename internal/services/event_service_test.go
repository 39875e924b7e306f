package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/civicpulse-api/internal/domain/event"
	"github.com/gravadigital/civicpulse-api/internal/storage/memory"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
	"github.com/gravadigital/civicpulse-api/internal/validation"
)

type eventFixture struct {
	service   *EventService
	eventRepo *memory.InMemoryEventRepository
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	eventRepo := memory.NewInMemoryEventRepository()
	return &eventFixture{
		service:   NewEventService(eventRepo),
		eventRepo: eventRepo,
	}
}

func (f *eventFixture) createEvent(t *testing.T, organizerID uuid.UUID, maxAttendees *int) *event.Event {
	t.Helper()
	created, err := f.service.Create(organizerID, CreateEventRequest{
		Title:        "Neighborhood cleanup",
		Description:  "Meet at the park entrance",
		EventDate:    time.Now().Add(72 * time.Hour),
		MaxAttendees: maxAttendees,
	})
	require.NoError(t, err)
	return created
}

func TestCreateEventRejectsPastDate(t *testing.T) {
	f := newEventFixture(t)

	_, err := f.service.Create(uuid.New(), CreateEventRequest{
		Title:     "Retro meetup",
		EventDate: time.Now().Add(-time.Hour),
	})

	var ve *validation.Error
	assert.ErrorAs(t, err, &ve)
}

func TestCreateEventRejectsNonPositiveCapacity(t *testing.T) {
	f := newEventFixture(t)

	zero := 0
	_, err := f.service.Create(uuid.New(), CreateEventRequest{
		Title:        "Town hall",
		EventDate:    time.Now().Add(time.Hour),
		MaxAttendees: &zero,
	})
	assert.Error(t, err)
}

func TestUpdateEventOrganizerOrAdminOnly(t *testing.T) {
	f := newEventFixture(t)
	organizerID := uuid.New()
	created := f.createEvent(t, organizerID, nil)

	newTitle := "Rescheduled cleanup"
	_, err := f.service.Update(created.ID, uuid.New(), false, UpdateEventRequest{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.service.Update(created.ID, organizerID, false, UpdateEventRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	// Untouched fields survive a partial update
	assert.Equal(t, created.Description, updated.Description)
}

func TestUpdatePastEventWithoutDateChange(t *testing.T) {
	f := newEventFixture(t)
	organizerID := uuid.New()
	created := f.createEvent(t, organizerID, nil)

	// Simulate the event date passing after creation
	created.EventDate = time.Now().Add(-48 * time.Hour)
	require.NoError(t, f.eventRepo.Update(created))

	// Non-date edits of a past event must still go through; only a
	// date change re-runs the future-date check
	desc := "Thanks everyone, minutes attached"
	updated, err := f.service.Update(created.ID, organizerID, false, UpdateEventRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)

	pastDate := time.Now().Add(-time.Hour)
	_, err = f.service.Update(created.ID, organizerID, false, UpdateEventRequest{EventDate: &pastDate})
	var ve *validation.Error
	assert.ErrorAs(t, err, &ve)
}

func TestDeleteEventForbiddenForStrangers(t *testing.T) {
	f := newEventFixture(t)
	created := f.createEvent(t, uuid.New(), nil)

	assert.ErrorIs(t, f.service.Delete(created.ID, uuid.New(), false), ErrForbidden)
	assert.NoError(t, f.service.Delete(created.ID, uuid.New(), true))

	_, err := f.eventRepo.GetByID(created.ID)
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestSetAttendanceCapacity(t *testing.T) {
	f := newEventFixture(t)
	limit := 2
	created := f.createEvent(t, uuid.New(), &limit)

	_, attending, err := f.service.SetAttendance(created.ID, uuid.New(), "attending")
	require.NoError(t, err)
	assert.Equal(t, int64(1), attending)

	_, attending, err = f.service.SetAttendance(created.ID, uuid.New(), "attending")
	require.NoError(t, err)
	assert.Equal(t, int64(2), attending)

	// Event is full
	_, _, err = f.service.SetAttendance(created.ID, uuid.New(), "attending")
	assert.ErrorIs(t, err, postgres.ErrEventFull)

	// Maybe and not_attending are not capacity bound
	maybe, attending, err := f.service.SetAttendance(created.ID, uuid.New(), "maybe")
	require.NoError(t, err)
	assert.Equal(t, event.StatusMaybe, maybe.Status)
	assert.Equal(t, int64(2), attending)
}

func TestSetAttendanceKeepsSlotWhenAlreadyAttending(t *testing.T) {
	f := newEventFixture(t)
	limit := 1
	created := f.createEvent(t, uuid.New(), &limit)
	attendeeID := uuid.New()

	_, _, err := f.service.SetAttendance(created.ID, attendeeID, "attending")
	require.NoError(t, err)

	// Re-confirming must not trip the capacity check against itself
	attendance, attending, err := f.service.SetAttendance(created.ID, attendeeID, "attending")
	require.NoError(t, err)
	assert.Equal(t, event.StatusAttending, attendance.Status)
	assert.Equal(t, int64(1), attending)
}

func TestSetAttendanceFreesSlotOnWithdrawal(t *testing.T) {
	f := newEventFixture(t)
	limit := 1
	created := f.createEvent(t, uuid.New(), &limit)
	firstID := uuid.New()

	_, _, err := f.service.SetAttendance(created.ID, firstID, "attending")
	require.NoError(t, err)

	_, _, err = f.service.SetAttendance(created.ID, uuid.New(), "attending")
	assert.ErrorIs(t, err, postgres.ErrEventFull)

	_, attending, err := f.service.SetAttendance(created.ID, firstID, "not_attending")
	require.NoError(t, err)
	assert.Equal(t, int64(0), attending)

	_, attending, err = f.service.SetAttendance(created.ID, uuid.New(), "attending")
	require.NoError(t, err)
	assert.Equal(t, int64(1), attending)
}

func TestSetAttendanceRejectsBadStatus(t *testing.T) {
	f := newEventFixture(t)
	created := f.createEvent(t, uuid.New(), nil)

	_, _, err := f.service.SetAttendance(created.ID, uuid.New(), "declined")

	var ve *validation.Error
	assert.ErrorAs(t, err, &ve)
}

func TestSetAttendanceMissingEvent(t *testing.T) {
	f := newEventFixture(t)

	_, _, err := f.service.SetAttendance(uuid.New(), uuid.New(), "attending")
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}
