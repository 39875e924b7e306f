package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/domain/event"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

type attendanceKey struct {
	eventID uuid.UUID
	userID  uuid.UUID
}

// InMemoryEventRepository implements postgres.EventRepository
type InMemoryEventRepository struct {
	mu         sync.Mutex
	events     map[uuid.UUID]*event.Event
	attendance map[attendanceKey]*event.Attendance
}

// NewInMemoryEventRepository creates an empty event repository
func NewInMemoryEventRepository() *InMemoryEventRepository {
	return &InMemoryEventRepository{
		events:     make(map[uuid.UUID]*event.Event),
		attendance: make(map[attendanceKey]*event.Attendance),
	}
}

func (r *InMemoryEventRepository) Create(e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	clone := *e
	r.events[e.ID] = &clone
	return nil
}

func (r *InMemoryEventRepository) GetByID(id uuid.UUID) (*event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.events[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *InMemoryEventRepository) List(upcomingOnly bool, page, limit int) ([]*event.Event, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*event.Event
	now := time.Now()
	for _, stored := range r.events {
		if upcomingOnly && stored.EventDate.Before(now) {
			continue
		}
		clone := *stored
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(a, b int) bool {
		return matched[a].EventDate.Before(matched[b].EventDate)
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

func (r *InMemoryEventRepository) Update(e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[e.ID]; !ok {
		return postgres.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	clone := *e
	r.events[e.ID] = &clone
	return nil
}

func (r *InMemoryEventRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

// SetAttendance mirrors the transactional capacity check of the
// PostgreSQL repository under the repository mutex.
func (r *InMemoryEventRepository) SetAttendance(eventID, userID uuid.UUID, status event.AttendanceStatus) (*event.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.events[eventID]
	if !ok {
		return nil, postgres.ErrNotFound
	}

	key := attendanceKey{eventID: eventID, userID: userID}
	existing, hasExisting := r.attendance[key]

	if status == event.StatusAttending {
		alreadyAttending := hasExisting && existing.Status == event.StatusAttending
		if !alreadyAttending {
			var attending int64
			for k, a := range r.attendance {
				if k.eventID == eventID && a.Status == event.StatusAttending {
					attending++
				}
			}
			if !stored.HasCapacityFor(attending) {
				return nil, postgres.ErrEventFull
			}
		}
	}

	if hasExisting {
		existing.Status = status
		existing.UpdatedAt = time.Now()
		clone := *existing
		return &clone, nil
	}

	created := event.NewAttendance(eventID, userID, status)
	r.attendance[key] = created
	clone := *created
	return &clone, nil
}

func (r *InMemoryEventRepository) GetAttendance(eventID, userID uuid.UUID) (*event.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.attendance[attendanceKey{eventID: eventID, userID: userID}]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *InMemoryEventRepository) CountAttending(eventID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for key, stored := range r.attendance {
		if key.eventID == eventID && stored.Status == event.StatusAttending {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryEventRepository) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.events)), nil
}

func (r *InMemoryEventRepository) ListRecent(limit int) ([]*event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []*event.Event
	for _, stored := range r.events {
		clone := *stored
		events = append(events, &clone)
	}
	sort.Slice(events, func(a, b int) bool {
		return events[a].CreatedAt.After(events[b].CreatedAt)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *InMemoryEventRepository) CountByOrganizer(userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, stored := range r.events {
		if stored.OrganizerID == userID {
			count++
		}
	}
	return count, nil
}
