package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/logger"
)

// PostgresVoteRepository implements VoteRepository using GORM
type PostgresVoteRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresVoteRepository creates a new PostgreSQL vote repository
func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{
		db:  db,
		log: logger.Repository("vote"),
	}
}

// Toggle applies the vote state machine for one (issue, voter) pair:
// no vote -> create, same type -> delete, other type -> update in place.
// The row is locked for the duration of the transaction and the unique
// index on (issue_id, user_id) guards against concurrent inserts.
func (r *PostgresVoteRepository) Toggle(issueID, userID uuid.UUID, voteType issue.VoteType) (issue.VoteOutcome, error) {
	var outcome issue.VoteOutcome

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing issue.Vote
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("issue_id = ? AND user_id = ?", issueID, userID).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := issue.NewVote(issueID, userID, voteType)
			if err := tx.Create(vote).Error; err != nil {
				return fmt.Errorf("failed to create vote: %w", err)
			}
			outcome = issue.VoteCreated
			return nil

		case err != nil:
			return fmt.Errorf("failed to check existing vote: %w", err)

		case existing.VoteType == voteType:
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to remove vote: %w", err)
			}
			outcome = issue.VoteRemoved
			return nil

		default:
			if err := tx.Model(&existing).Update("vote_type", voteType).Error; err != nil {
				return fmt.Errorf("failed to update vote: %w", err)
			}
			outcome = issue.VoteUpdated
			return nil
		}
	})
	if err != nil {
		r.log.Error("Vote toggle failed", "issue_id", issueID, "user_id", userID, "error", err)
		return "", err
	}

	r.log.Debug("Vote toggled", "issue_id", issueID, "user_id", userID, "outcome", outcome)
	return outcome, nil
}

func (r *PostgresVoteRepository) GetByIssueAndUser(issueID, userID uuid.UUID) (*issue.Vote, error) {
	var vote issue.Vote
	if err := r.db.Where("issue_id = ? AND user_id = ?", issueID, userID).First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}

func (r *PostgresVoteRepository) CountByIssue(issueID uuid.UUID) (up, down int64, err error) {
	if err = r.db.Model(&issue.Vote{}).
		Where("issue_id = ? AND vote_type = ?", issueID, issue.VoteUp).
		Count(&up).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count up votes: %w", err)
	}
	if err = r.db.Model(&issue.Vote{}).
		Where("issue_id = ? AND vote_type = ?", issueID, issue.VoteDown).
		Count(&down).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count down votes: %w", err)
	}
	return up, down, nil
}

func (r *PostgresVoteRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&issue.Vote{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

func (r *PostgresVoteRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&issue.Vote{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count votes by user: %w", err)
	}
	return count, nil
}
