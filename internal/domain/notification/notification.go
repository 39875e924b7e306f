package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification type tags
const (
	TypeIssueStatusUpdate = "issue_status_update"
	TypeIssueComment      = "issue_comment"
	TypeSystem            = "system"
)

// Notification is created only as a best-effort side effect of another
// mutation and targets a single user.
type Notification struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title     string     `json:"title" gorm:"not null"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	Type      string     `json:"type"`
	RelatedID *uuid.UUID `json:"related_id" gorm:"type:uuid"`
	IsRead    bool       `json:"is_read" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate sets a UUID before creating the record
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NewNotification creates an unread notification for a user
func NewNotification(userID uuid.UUID, title, message, notifType string, relatedID *uuid.UUID) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		RelatedID: relatedID,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
}

// MarkRead flags the notification as read
func (n *Notification) MarkRead() {
	n.IsRead = true
}

// Validate checks if the notification data is valid
func (n *Notification) Validate() error {
	if n.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}
