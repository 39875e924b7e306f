package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/civicpulse-api/internal/domain/profile"
	"github.com/gravadigital/civicpulse-api/internal/logger"
)

// PostgresProfileRepository implements ProfileRepository using GORM
type PostgresProfileRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresProfileRepository creates a new PostgreSQL profile repository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{
		db:  db,
		log: logger.Repository("profile"),
	}
}

func (r *PostgresProfileRepository) Create(p *profile.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}

	var existing profile.Profile
	if err := r.db.Where("email = ?", p.Email).First(&existing).Error; err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing profile: %w", err)
	}

	if err := r.db.Create(p).Error; err != nil {
		// Concurrent registrations can slip past the pre-check and hit
		// the unique index on email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		r.log.Error("Failed to create profile", "error", err, "email", p.Email)
		return fmt.Errorf("failed to create profile: %w", err)
	}

	r.log.Info("Profile created", "id", p.ID, "email", p.Email)
	return nil
}

func (r *PostgresProfileRepository) GetByID(id uuid.UUID) (*profile.Profile, error) {
	var p profile.Profile
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		r.log.Error("Failed to get profile by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (r *PostgresProfileRepository) GetByEmail(email string) (*profile.Profile, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}

	var p profile.Profile
	if err := r.db.Where("email = ?", strings.ToLower(email)).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return &p, nil
}

func (r *PostgresProfileRepository) List(page, limit int) ([]*profile.Profile, int64, error) {
	var total int64
	if err := r.db.Model(&profile.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	var profiles []*profile.Profile
	offset := (page - 1) * limit
	if err := r.db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&profiles).Error; err != nil {
		r.log.Error("Failed to list profiles", "error", err)
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, total, nil
}

func (r *PostgresProfileRepository) Update(p *profile.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}

	if err := r.db.Save(p).Error; err != nil {
		r.log.Error("Failed to update profile", "error", err, "id", p.ID)
		return fmt.Errorf("failed to update profile: %w", err)
	}

	r.log.Info("Profile updated", "id", p.ID)
	return nil
}

// Deactivate soft-deletes a profile by clearing its active flag
func (r *PostgresProfileRepository) Deactivate(id uuid.UUID) error {
	result := r.db.Model(&profile.Profile{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		r.log.Error("Failed to deactivate profile", "error", result.Error, "id", id)
		return fmt.Errorf("failed to deactivate profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.log.Info("Profile deactivated", "id", id)
	return nil
}

func (r *PostgresProfileRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&profile.Profile{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// EngagementStats aggregates per-user activity counts for admin reports
func (r *PostgresProfileRepository) EngagementStats(limit int) ([]*UserEngagement, error) {
	var stats []*UserEngagement
	err := r.db.Model(&profile.Profile{}).
		Select(`profiles.id AS user_id,
			COALESCE(NULLIF(profiles.display_name, ''), profiles.first_name || ' ' || profiles.last_name) AS full_name,
			profiles.created_at AS join_date,
			(SELECT COUNT(*) FROM civic_issues WHERE civic_issues.reporter_id = profiles.id) AS issues_created,
			(SELECT COUNT(*) FROM issue_comments WHERE issue_comments.user_id = profiles.id) AS comments_posted,
			(SELECT COUNT(*) FROM issue_votes WHERE issue_votes.user_id = profiles.id) AS votes_given,
			(SELECT COUNT(*) FROM community_events WHERE community_events.organizer_id = profiles.id) AS events_organized`).
		Order("profiles.created_at ASC").
		Limit(limit).
		Scan(&stats).Error
	if err != nil {
		r.log.Error("Failed to aggregate engagement stats", "error", err)
		return nil, fmt.Errorf("failed to aggregate engagement stats: %w", err)
	}
	return stats, nil
}
