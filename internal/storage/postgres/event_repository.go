package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/civicpulse-api/internal/domain/event"
	"github.com/gravadigital/civicpulse-api/internal/logger"
)

// PostgresEventRepository implements EventRepository using GORM
type PostgresEventRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresEventRepository creates a new PostgreSQL event repository
func NewPostgresEventRepository(db *gorm.DB) *PostgresEventRepository {
	return &PostgresEventRepository{
		db:  db,
		log: logger.Repository("event"),
	}
}

func (r *PostgresEventRepository) Create(e *event.Event) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("event validation failed: %w", err)
	}

	if err := r.db.Create(e).Error; err != nil {
		r.log.Error("Failed to create event", "error", err, "title", e.Title)
		return fmt.Errorf("failed to create event: %w", err)
	}

	r.log.Info("Event created", "id", e.ID, "organizer_id", e.OrganizerID)
	return nil
}

func (r *PostgresEventRepository) GetByID(id uuid.UUID) (*event.Event, error) {
	var e event.Event
	if err := r.db.First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		r.log.Error("Failed to get event by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &e, nil
}

func (r *PostgresEventRepository) List(upcomingOnly bool, page, limit int) ([]*event.Event, int64, error) {
	query := r.db.Model(&event.Event{})
	if upcomingOnly {
		query = query.Where("event_date >= ?", time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.log.Error("Failed to count events", "error", err)
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var events []*event.Event
	offset := (page - 1) * limit
	if err := query.Order("event_date ASC").
		Offset(offset).Limit(limit).
		Find(&events).Error; err != nil {
		r.log.Error("Failed to list events", "error", err)
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, total, nil
}

// Update persists an edited event. Date validation happens in the
// service and only when the date itself changes, so past events stay
// editable.
func (r *PostgresEventRepository) Update(e *event.Event) error {
	if err := r.db.Save(e).Error; err != nil {
		r.log.Error("Failed to update event", "error", err, "id", e.ID)
		return fmt.Errorf("failed to update event: %w", err)
	}

	r.log.Info("Event updated", "id", e.ID)
	return nil
}

func (r *PostgresEventRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&event.Event{}, "id = ?", id)
	if result.Error != nil {
		r.log.Error("Failed to delete event", "error", result.Error, "id", id)
		return fmt.Errorf("failed to delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.log.Info("Event deleted", "id", id)
	return nil
}

// SetAttendance upserts the caller's attendance row for an event. The
// capacity check runs inside the transaction with the event row locked,
// so the live attending count cannot drift between check and write.
func (r *PostgresEventRepository) SetAttendance(eventID, userID uuid.UUID, status event.AttendanceStatus) (*event.Attendance, error) {
	var attendance *event.Attendance

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var e event.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&e, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load event: %w", err)
		}

		var existing event.Attendance
		err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).
			First(&existing).Error
		hasExisting := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing attendance: %w", err)
		}

		if status == event.StatusAttending {
			// Rows already counted as attending keep their slot.
			alreadyAttending := hasExisting && existing.Status == event.StatusAttending
			if !alreadyAttending {
				var attending int64
				if err := tx.Model(&event.Attendance{}).
					Where("event_id = ? AND status = ?", eventID, event.StatusAttending).
					Count(&attending).Error; err != nil {
					return fmt.Errorf("failed to count attendees: %w", err)
				}
				if !e.HasCapacityFor(attending) {
					return ErrEventFull
				}
			}
		}

		if hasExisting {
			existing.Status = status
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update attendance: %w", err)
			}
			attendance = &existing
			return nil
		}

		created := event.NewAttendance(eventID, userID, status)
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create attendance: %w", err)
		}
		attendance = created
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrEventFull) {
			r.log.Error("Attendance upsert failed", "event_id", eventID, "user_id", userID, "error", err)
		}
		return nil, err
	}

	r.log.Debug("Attendance set", "event_id", eventID, "user_id", userID, "status", status)
	return attendance, nil
}

func (r *PostgresEventRepository) GetAttendance(eventID, userID uuid.UUID) (*event.Attendance, error) {
	var a event.Attendance
	if err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &a, nil
}

func (r *PostgresEventRepository) CountAttending(eventID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&event.Attendance{}).
		Where("event_id = ? AND status = ?", eventID, event.StatusAttending).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return count, nil
}

func (r *PostgresEventRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&event.Event{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *PostgresEventRepository) ListRecent(limit int) ([]*event.Event, error) {
	var events []*event.Event
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}
	return events, nil
}

func (r *PostgresEventRepository) CountByOrganizer(userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&event.Event{}).
		Where("organizer_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count events by organizer: %w", err)
	}
	return count, nil
}
