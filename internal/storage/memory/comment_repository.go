package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
)

// InMemoryCommentRepository implements postgres.CommentRepository
type InMemoryCommentRepository struct {
	mu       sync.RWMutex
	comments map[uuid.UUID]*issue.Comment
}

// NewInMemoryCommentRepository creates an empty comment repository
func NewInMemoryCommentRepository() *InMemoryCommentRepository {
	return &InMemoryCommentRepository{
		comments: make(map[uuid.UUID]*issue.Comment),
	}
}

func (r *InMemoryCommentRepository) Create(c *issue.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	clone := *c
	r.comments[c.ID] = &clone
	return nil
}

func (r *InMemoryCommentRepository) ListByIssue(issueID uuid.UUID) ([]*issue.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var comments []*issue.Comment
	for _, stored := range r.comments {
		if stored.IssueID != issueID {
			continue
		}
		clone := *stored
		comments = append(comments, &clone)
	}
	sort.Slice(comments, func(a, b int) bool {
		return comments[a].CreatedAt.Before(comments[b].CreatedAt)
	})
	return comments, nil
}

func (r *InMemoryCommentRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.comments)), nil
}

func (r *InMemoryCommentRepository) CountByIssue(issueID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, stored := range r.comments {
		if stored.IssueID == issueID {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryCommentRepository) CountByUser(userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, stored := range r.comments {
		if stored.UserID == userID {
			count++
		}
	}
	return count, nil
}
