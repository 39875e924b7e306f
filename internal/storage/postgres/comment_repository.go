package postgres

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/logger"
)

// PostgresCommentRepository implements CommentRepository using GORM
type PostgresCommentRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresCommentRepository creates a new PostgreSQL comment repository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{
		db:  db,
		log: logger.Repository("comment"),
	}
}

func (r *PostgresCommentRepository) Create(c *issue.Comment) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("comment validation failed: %w", err)
	}

	if err := r.db.Create(c).Error; err != nil {
		r.log.Error("Failed to create comment", "error", err, "issue_id", c.IssueID)
		return fmt.Errorf("failed to create comment: %w", err)
	}

	r.log.Info("Comment created", "id", c.ID, "issue_id", c.IssueID, "official", c.IsOfficial)
	return nil
}

func (r *PostgresCommentRepository) ListByIssue(issueID uuid.UUID) ([]*issue.Comment, error) {
	var comments []*issue.Comment
	if err := r.db.Where("issue_id = ?", issueID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		r.log.Error("Failed to list comments", "issue_id", issueID, "error", err)
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (r *PostgresCommentRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&issue.Comment{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

func (r *PostgresCommentRepository) CountByIssue(issueID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&issue.Comment{}).
		Where("issue_id = ?", issueID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments by issue: %w", err)
	}
	return count, nil
}

func (r *PostgresCommentRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&issue.Comment{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments by user: %w", err)
	}
	return count, nil
}
