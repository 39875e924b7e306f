package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/civicpulse-api/internal/domain/notification"
	"github.com/gravadigital/civicpulse-api/internal/logger"
)

// PostgresNotificationRepository implements NotificationRepository using GORM
type PostgresNotificationRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresNotificationRepository creates a new PostgreSQL notification repository
func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{
		db:  db,
		log: logger.Repository("notification"),
	}
}

func (r *PostgresNotificationRepository) Create(n *notification.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("notification validation failed: %w", err)
	}

	if err := r.db.Create(n).Error; err != nil {
		r.log.Error("Failed to create notification", "error", err, "user_id", n.UserID)
		return fmt.Errorf("failed to create notification: %w", err)
	}

	r.log.Debug("Notification created", "id", n.ID, "user_id", n.UserID, "type", n.Type)
	return nil
}

func (r *PostgresNotificationRepository) ListByUser(userID uuid.UUID, unreadOnly bool, page, limit int) ([]*notification.Notification, int64, error) {
	query := r.db.Model(&notification.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []*notification.Notification
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error; err != nil {
		r.log.Error("Failed to list notifications", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

// MarkRead flags a notification as read, but only if it belongs to the
// given user.
func (r *PostgresNotificationRepository) MarkRead(id, userID uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	n.MarkRead()
	if err := r.db.Save(&n).Error; err != nil {
		r.log.Error("Failed to mark notification read", "id", id, "error", err)
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}

	return &n, nil
}
