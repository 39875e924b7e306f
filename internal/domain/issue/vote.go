package issue

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote represents a single up or down vote by a user on an issue.
// The (issue_id, user_id) pair is unique: resubmitting the same type
// removes the vote, submitting the other type overwrites it.
type Vote struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	IssueID   uuid.UUID `json:"issue_id" gorm:"type:uuid;not null;uniqueIndex:idx_issue_votes_issue_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_issue_votes_issue_user"`
	VoteType  VoteType  `json:"vote_type" gorm:"type:vote_type;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Vote) TableName() string {
	return "issue_votes"
}

// BeforeCreate sets a UUID before creating the record
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// NewVote creates a vote of the given type for an issue
func NewVote(issueID, userID uuid.UUID, voteType VoteType) *Vote {
	return &Vote{
		ID:        uuid.New(),
		IssueID:   issueID,
		UserID:    userID,
		VoteType:  voteType,
		CreatedAt: time.Now(),
	}
}

// Validate checks if the vote data is valid
func (v *Vote) Validate() error {
	if v.IssueID == uuid.Nil {
		return fmt.Errorf("issue_id is required")
	}
	if v.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	return nil
}

// VoteOutcome describes what a toggle submission did to the vote row
type VoteOutcome string

const (
	VoteCreated VoteOutcome = "created"
	VoteUpdated VoteOutcome = "updated"
	VoteRemoved VoteOutcome = "removed"
)

// VoteType is the direction of a vote
type VoteType byte

const (
	VoteUp VoteType = iota
	VoteDown
)

func (t VoteType) String() string {
	switch t {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (t VoteType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *VoteType) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	voteType, valid := VoteTypeFromString(str)
	if !valid {
		return fmt.Errorf("invalid vote type: %s", str)
	}
	*t = voteType
	return nil
}

// VoteTypeFromString converts a string to a VoteType
func VoteTypeFromString(s string) (VoteType, bool) {
	switch s {
	case "up":
		return VoteUp, true
	case "down":
		return VoteDown, true
	default:
		return VoteUp, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (t *VoteType) Scan(value interface{}) error {
	if value == nil {
		*t = VoteUp
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into VoteType", value)
	}

	voteType, valid := VoteTypeFromString(str)
	if !valid {
		return fmt.Errorf("invalid vote type value: %s", str)
	}
	*t = voteType
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (t VoteType) Value() (driver.Value, error) {
	return t.String(), nil
}
