package services

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/domain/event"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
	"github.com/gravadigital/civicpulse-api/internal/validation"
)

// EventService handles the business logic for community events
type EventService struct {
	eventRepo postgres.EventRepository
	validator validation.EventValidation
	log       *log.Logger
}

// NewEventService creates a new event service
func NewEventService(eventRepo postgres.EventRepository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		validator: validation.EventValidation{},
		log:       logger.Service("event"),
	}
}

// CreateEventRequest represents a request to organize an event
type CreateEventRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	EventDate       time.Time `json:"event_date" binding:"required"`
	LocationAddress string    `json:"location_address"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	MaxAttendees    *int      `json:"max_attendees"`
	IsPublic        *bool     `json:"is_public"`
	ImageURL        string    `json:"image_url"`
}

// Create organizes a new community event
func (s *EventService) Create(organizerID uuid.UUID, req CreateEventRequest) (*event.Event, error) {
	if err := s.validator.ValidateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateEventDate(req.EventDate); err != nil {
		return nil, err
	}
	if req.MaxAttendees != nil && *req.MaxAttendees < 1 {
		return nil, validation.NewError("max_attendees must be positive")
	}

	newEvent := event.NewEvent(req.Title, req.Description, organizerID, req.EventDate)
	newEvent.LocationAddress = req.LocationAddress
	newEvent.Latitude = req.Latitude
	newEvent.Longitude = req.Longitude
	newEvent.MaxAttendees = req.MaxAttendees
	newEvent.ImageURL = req.ImageURL
	if req.IsPublic != nil {
		newEvent.IsPublic = *req.IsPublic
	}

	if err := s.eventRepo.Create(newEvent); err != nil {
		return nil, err
	}

	return newEvent, nil
}

// UpdateEventRequest represents a request to edit an event
type UpdateEventRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	EventDate       *time.Time `json:"event_date"`
	LocationAddress *string    `json:"location_address"`
	MaxAttendees    *int       `json:"max_attendees"`
	IsPublic        *bool      `json:"is_public"`
	ImageURL        *string    `json:"image_url"`
}

// Update edits an event. Only the organizer or an admin may edit.
func (s *EventService) Update(eventID, actorID uuid.UUID, isAdmin bool, req UpdateEventRequest) (*event.Event, error) {
	existing, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	if !existing.IsOrganizer(actorID) && !isAdmin {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		if err := s.validator.ValidateTitle(*req.Title); err != nil {
			return nil, err
		}
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.EventDate != nil {
		if err := s.validator.ValidateEventDate(*req.EventDate); err != nil {
			return nil, err
		}
		existing.EventDate = *req.EventDate
	}
	if req.LocationAddress != nil {
		existing.LocationAddress = *req.LocationAddress
	}
	if req.MaxAttendees != nil {
		if *req.MaxAttendees < 1 {
			return nil, validation.NewError("max_attendees must be positive")
		}
		existing.MaxAttendees = req.MaxAttendees
	}
	if req.IsPublic != nil {
		existing.IsPublic = *req.IsPublic
	}
	if req.ImageURL != nil {
		existing.ImageURL = *req.ImageURL
	}

	if err := s.eventRepo.Update(existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete cancels an event. Only the organizer or an admin may delete.
func (s *EventService) Delete(eventID, actorID uuid.UUID, isAdmin bool) error {
	existing, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return err
	}

	if !existing.IsOrganizer(actorID) && !isAdmin {
		return ErrForbidden
	}

	return s.eventRepo.Delete(eventID)
}

// SetAttendance records the caller's RSVP for an event. Capacity is
// enforced by the repository inside a transaction.
func (s *EventService) SetAttendance(eventID, userID uuid.UUID, statusStr string) (*event.Attendance, int64, error) {
	status, ok := event.AttendanceStatusFromString(statusStr)
	if !ok {
		return nil, 0, validation.NewError("invalid attendance status %q", statusStr)
	}

	attendance, err := s.eventRepo.SetAttendance(eventID, userID, status)
	if err != nil {
		return nil, 0, err
	}

	attending, err := s.eventRepo.CountAttending(eventID)
	if err != nil {
		return nil, 0, err
	}

	return attendance, attending, nil
}
