package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/domain/event"
	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/domain/notification"
	"github.com/gravadigital/civicpulse-api/internal/domain/profile"
)

// Sentinel errors shared by all repository implementations
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrEventFull      = errors.New("event is full")
)

// IssueFilter narrows issue list queries. Nil values mean no filter.
type IssueFilter struct {
	CategoryID *uuid.UUID
	Status     *issue.Status
	Priority   *issue.Priority
	SortBy     string
	SortDesc   bool
}

// UserEngagement aggregates one user's activity for admin reports
type UserEngagement struct {
	UserID          uuid.UUID `json:"user_id"`
	FullName        string    `json:"full_name"`
	JoinDate        time.Time `json:"join_date"`
	IssuesCreated   int64     `json:"issues_created"`
	CommentsPosted  int64     `json:"comments_posted"`
	VotesGiven      int64     `json:"votes_given"`
	EventsOrganized int64     `json:"events_organized"`
}

// IssueRepository defines persistence operations for issues, their
// categories and their status audit trail.
type IssueRepository interface {
	Create(i *issue.Issue) error
	GetByID(id uuid.UUID) (*issue.Issue, error)
	List(filter IssueFilter, page, limit int) ([]*issue.Issue, int64, error)
	Update(i *issue.Issue) error
	Delete(id uuid.UUID) error
	IncrementViewCount(id uuid.UUID) error

	CreateStatusUpdate(u *issue.StatusUpdate) error

	CreateCategory(c *issue.Category) error
	GetAllCategories() ([]*issue.Category, error)

	Count() (int64, error)
	CountSince(t time.Time) (int64, error)
	CountByStatus(s issue.Status) (int64, error)
	CountsByStatus() (map[string]int64, error)
	CountsByPriority() (map[string]int64, error)
	CountsByCategory() (map[string]int64, error)
	MonthlyCounts(since time.Time) (map[string]int64, error)
	ListRecent(limit int) ([]*issue.Issue, error)
	CountByReporter(userID uuid.UUID) (int64, error)
}

// VoteRepository defines persistence operations for issue votes. The
// toggle operation must be atomic per (issue, voter) pair.
type VoteRepository interface {
	Toggle(issueID, userID uuid.UUID, voteType issue.VoteType) (issue.VoteOutcome, error)
	GetByIssueAndUser(issueID, userID uuid.UUID) (*issue.Vote, error)
	CountByIssue(issueID uuid.UUID) (up, down int64, err error)
	Count() (int64, error)
	CountByUser(userID uuid.UUID) (int64, error)
}

// CommentRepository defines persistence operations for issue comments
type CommentRepository interface {
	Create(c *issue.Comment) error
	ListByIssue(issueID uuid.UUID) ([]*issue.Comment, error)
	Count() (int64, error)
	CountByIssue(issueID uuid.UUID) (int64, error)
	CountByUser(userID uuid.UUID) (int64, error)
}

// EventRepository defines persistence operations for community events
// and attendance. SetAttendance re-validates capacity transactionally.
type EventRepository interface {
	Create(e *event.Event) error
	GetByID(id uuid.UUID) (*event.Event, error)
	List(upcomingOnly bool, page, limit int) ([]*event.Event, int64, error)
	Update(e *event.Event) error
	Delete(id uuid.UUID) error

	SetAttendance(eventID, userID uuid.UUID, status event.AttendanceStatus) (*event.Attendance, error)
	GetAttendance(eventID, userID uuid.UUID) (*event.Attendance, error)
	CountAttending(eventID uuid.UUID) (int64, error)

	Count() (int64, error)
	ListRecent(limit int) ([]*event.Event, error)
	CountByOrganizer(userID uuid.UUID) (int64, error)
}

// ProfileRepository defines persistence operations for user profiles.
// Profiles are never hard-deleted, only deactivated.
type ProfileRepository interface {
	Create(p *profile.Profile) error
	GetByID(id uuid.UUID) (*profile.Profile, error)
	GetByEmail(email string) (*profile.Profile, error)
	List(page, limit int) ([]*profile.Profile, int64, error)
	Update(p *profile.Profile) error
	Deactivate(id uuid.UUID) error
	Count() (int64, error)
	EngagementStats(limit int) ([]*UserEngagement, error)
}

// NotificationRepository defines persistence operations for notifications
type NotificationRepository interface {
	Create(n *notification.Notification) error
	ListByUser(userID uuid.UUID, unreadOnly bool, page, limit int) ([]*notification.Notification, int64, error)
	MarkRead(id, userID uuid.UUID) (*notification.Notification, error)
}
