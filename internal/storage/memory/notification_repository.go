package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/domain/notification"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// InMemoryNotificationRepository implements postgres.NotificationRepository
type InMemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*notification.Notification
}

// NewInMemoryNotificationRepository creates an empty notification repository
func NewInMemoryNotificationRepository() *InMemoryNotificationRepository {
	return &InMemoryNotificationRepository{
		notifications: make(map[uuid.UUID]*notification.Notification),
	}
}

func (r *InMemoryNotificationRepository) Create(n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	clone := *n
	r.notifications[n.ID] = &clone
	return nil
}

func (r *InMemoryNotificationRepository) ListByUser(userID uuid.UUID, unreadOnly bool, page, limit int) ([]*notification.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*notification.Notification
	for _, stored := range r.notifications {
		if stored.UserID != userID {
			continue
		}
		if unreadOnly && stored.IsRead {
			continue
		}
		clone := *stored
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(a, b int) bool {
		return matched[a].CreatedAt.After(matched[b].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *InMemoryNotificationRepository) MarkRead(id, userID uuid.UUID) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.notifications[id]
	if !ok || stored.UserID != userID {
		return nil, postgres.ErrNotFound
	}
	stored.MarkRead()
	clone := *stored
	return &clone, nil
}
