package issue

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Title           string         `json:"title" gorm:"not null"`
	Description     string         `json:"description" gorm:"type:text;not null"`
	CategoryID      *uuid.UUID     `json:"category_id" gorm:"type:uuid"`
	ReporterID      uuid.UUID      `json:"reporter_id" gorm:"type:uuid;not null;index"`
	AssigneeID      *uuid.UUID     `json:"assignee_id" gorm:"type:uuid"`
	Priority        Priority       `json:"priority" gorm:"type:issue_priority;not null;default:'medium'"`
	Status          Status         `json:"status" gorm:"type:issue_status;not null;default:'open'"`
	LocationAddress string         `json:"location_address"`
	Latitude        *float64       `json:"latitude" gorm:"type:decimal(10,7)"`
	Longitude       *float64       `json:"longitude" gorm:"type:decimal(10,7)"`
	ImageURLs       pq.StringArray `json:"image_urls" gorm:"type:text[]"`
	IsAnonymous     bool           `json:"is_anonymous" gorm:"default:false"`
	AdminNotes      string         `json:"admin_notes,omitempty" gorm:"type:text"`
	ViewCount       int            `json:"view_count" gorm:"not null;default:0"`
	CreatedAt       time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Issue) TableName() string {
	return "civic_issues"
}

// BeforeCreate sets a UUID before creating the record
func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// NewIssue creates a new open issue reported by the given user
func NewIssue(title, description string, reporterID uuid.UUID) *Issue {
	return &Issue{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		ReporterID:  reporterID,
		Priority:    PriorityMedium,
		Status:      StatusOpen,
		CreatedAt:   time.Now(),
	}
}

// IsReporter checks if the given user ID reported this issue
func (i *Issue) IsReporter(userID uuid.UUID) bool {
	return i.ReporterID == userID
}

// Validate checks if the issue data is valid
func (i *Issue) Validate() error {
	if i.Title == "" {
		return fmt.Errorf("title is required")
	}
	if i.Description == "" {
		return fmt.Errorf("description is required")
	}
	if i.ReporterID == uuid.Nil {
		return fmt.Errorf("reporter_id is required")
	}
	return nil
}

// Category groups issues for filtering and reporting
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Category) TableName() string {
	return "issue_categories"
}

// BeforeCreate sets a UUID before creating the record
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// StatusUpdate is the audit record appended for each issue status change
type StatusUpdate struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	IssueID    uuid.UUID `json:"issue_id" gorm:"type:uuid;not null;index"`
	UpdatedBy  uuid.UUID `json:"updated_by" gorm:"type:uuid;not null"`
	UpdateType string    `json:"update_type" gorm:"not null;default:'status_change'"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	Message    string    `json:"message" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (StatusUpdate) TableName() string {
	return "issue_updates"
}

// BeforeCreate sets a UUID before creating the record
func (u *StatusUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// NewStatusUpdate records a transition between two statuses by an actor
func NewStatusUpdate(issueID, actorID uuid.UUID, oldStatus, newStatus Status) *StatusUpdate {
	return &StatusUpdate{
		ID:         uuid.New(),
		IssueID:    issueID,
		UpdatedBy:  actorID,
		UpdateType: "status_change",
		OldValue:   oldStatus.String(),
		NewValue:   newStatus.String(),
		Message:    fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus),
		CreatedAt:  time.Now(),
	}
}

// Status represents the lifecycle state of an issue
type Status byte

const (
	StatusOpen Status = iota
	StatusInProgress
	StatusResolved
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusInProgress:
		return "in_progress"
	case StatusResolved:
		return "resolved"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Status) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	status, valid := StatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid status: %s", str)
	}
	*s = status
	return nil
}

// StatusFromString converts a string to a Status
func StatusFromString(s string) (Status, bool) {
	switch s {
	case "open":
		return StatusOpen, true
	case "in_progress":
		return StatusInProgress, true
	case "resolved":
		return StatusResolved, true
	case "closed":
		return StatusClosed, true
	default:
		return StatusOpen, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (s *Status) Scan(value interface{}) error {
	if value == nil {
		*s = StatusOpen
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into Status", value)
	}

	status, valid := StatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid status value: %s", str)
	}
	*s = status
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// Priority represents the urgency of an issue
type Priority byte

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (p *Priority) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	priority, valid := PriorityFromString(str)
	if !valid {
		return fmt.Errorf("invalid priority: %s", str)
	}
	*p = priority
	return nil
}

// PriorityFromString converts a string to a Priority
func PriorityFromString(s string) (Priority, bool) {
	switch s {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	case "urgent":
		return PriorityUrgent, true
	default:
		return PriorityMedium, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (p *Priority) Scan(value interface{}) error {
	if value == nil {
		*p = PriorityMedium
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into Priority", value)
	}

	priority, valid := PriorityFromString(str)
	if !valid {
		return fmt.Errorf("invalid priority value: %s", str)
	}
	*p = priority
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (p Priority) Value() (driver.Value, error) {
	return p.String(), nil
}
