package issue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a threaded comment on an issue. The official flag
// is captured from the author's capability at creation time and is not
// re-evaluated later.
type Comment struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	IssueID         uuid.UUID  `json:"issue_id" gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID  `json:"user_id" gorm:"type:uuid;not null"`
	Content         string     `json:"content" gorm:"type:text;not null"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id" gorm:"type:uuid"`
	IsOfficial      bool       `json:"is_official" gorm:"default:false"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Comment) TableName() string {
	return "issue_comments"
}

// BeforeCreate sets a UUID before creating the record
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NewComment creates a comment on an issue
func NewComment(issueID, userID uuid.UUID, content string, isOfficial bool) *Comment {
	return &Comment{
		ID:         uuid.New(),
		IssueID:    issueID,
		UserID:     userID,
		Content:    strings.TrimSpace(content),
		IsOfficial: isOfficial,
		CreatedAt:  time.Now(),
	}
}

// Validate checks if the comment data is valid
func (c *Comment) Validate() error {
	if c.IssueID == uuid.Nil {
		return fmt.Errorf("issue_id is required")
	}
	if c.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}
