package event

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event represents a community event organized by a user
type Event struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Title           string     `json:"title" gorm:"not null"`
	Description     string     `json:"description" gorm:"type:text"`
	OrganizerID     uuid.UUID  `json:"organizer_id" gorm:"type:uuid;not null;index"`
	EventDate       time.Time  `json:"event_date" gorm:"not null;index"`
	LocationAddress string     `json:"location_address"`
	Latitude        *float64   `json:"latitude" gorm:"type:decimal(10,7)"`
	Longitude       *float64   `json:"longitude" gorm:"type:decimal(10,7)"`
	MaxAttendees    *int       `json:"max_attendees"`
	IsPublic        bool       `json:"is_public" gorm:"not null;default:true"`
	ImageURL        string     `json:"image_url"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Event) TableName() string {
	return "community_events"
}

// BeforeCreate sets a UUID before creating the record
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NewEvent creates a public event organized by the given user
func NewEvent(title, description string, organizerID uuid.UUID, eventDate time.Time) *Event {
	return &Event{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		OrganizerID: organizerID,
		EventDate:   eventDate,
		IsPublic:    true,
		CreatedAt:   time.Now(),
	}
}

// IsOrganizer checks if the given user ID organizes this event
func (e *Event) IsOrganizer(userID uuid.UUID) bool {
	return e.OrganizerID == userID
}

// HasCapacityFor reports whether one more attendee fits given the live
// attending count. Events without max_attendees are unbounded.
func (e *Event) HasCapacityFor(currentAttending int64) bool {
	if e.MaxAttendees == nil {
		return true
	}
	return currentAttending < int64(*e.MaxAttendees)
}

// Validate checks if the event data is valid. The event date must be
// strictly in the future.
func (e *Event) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("title is required")
	}
	if e.OrganizerID == uuid.Nil {
		return fmt.Errorf("organizer_id is required")
	}
	if e.EventDate.IsZero() {
		return fmt.Errorf("event_date is required")
	}
	if !e.EventDate.After(time.Now()) {
		return fmt.Errorf("event_date must be in the future")
	}
	if e.MaxAttendees != nil && *e.MaxAttendees <= 0 {
		return fmt.Errorf("max_attendees must be positive")
	}
	return nil
}

// Attendance represents a user's attendance record for an event.
// One row per (event_id, user_id), updated in place.
type Attendance struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	EventID   uuid.UUID        `json:"event_id" gorm:"type:uuid;not null;uniqueIndex:idx_event_attendees_event_user"`
	UserID    uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_event_attendees_event_user"`
	Status    AttendanceStatus `json:"status" gorm:"type:attendance_status;not null;default:'attending'"`
	CreatedAt time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Attendance) TableName() string {
	return "event_attendees"
}

// BeforeCreate sets a UUID before creating the record
func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// NewAttendance creates an attendance record for an event
func NewAttendance(eventID, userID uuid.UUID, status AttendanceStatus) *Attendance {
	return &Attendance{
		ID:        uuid.New(),
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

// AttendanceStatus represents a user's RSVP state for an event
type AttendanceStatus byte

const (
	StatusAttending AttendanceStatus = iota
	StatusMaybe
	StatusNotAttending
)

func (s AttendanceStatus) String() string {
	switch s {
	case StatusAttending:
		return "attending"
	case StatusMaybe:
		return "maybe"
	case StatusNotAttending:
		return "not_attending"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s AttendanceStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *AttendanceStatus) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	status, valid := AttendanceStatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid attendance status: %s", str)
	}
	*s = status
	return nil
}

// AttendanceStatusFromString converts a string to an AttendanceStatus
func AttendanceStatusFromString(s string) (AttendanceStatus, bool) {
	switch s {
	case "attending":
		return StatusAttending, true
	case "maybe":
		return StatusMaybe, true
	case "not_attending":
		return StatusNotAttending, true
	default:
		return StatusAttending, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (s *AttendanceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = StatusAttending
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into AttendanceStatus", value)
	}

	status, valid := AttendanceStatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid attendance status value: %s", str)
	}
	*s = status
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (s AttendanceStatus) Value() (driver.Value, error) {
	return s.String(), nil
}
