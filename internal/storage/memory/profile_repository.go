package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/domain/profile"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// InMemoryProfileRepository implements postgres.ProfileRepository
type InMemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*profile.Profile
}

// NewInMemoryProfileRepository creates an empty profile repository
func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{
		profiles: make(map[uuid.UUID]*profile.Profile),
	}
}

func (r *InMemoryProfileRepository) Create(p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.profiles {
		if strings.EqualFold(stored.Email, p.Email) {
			return postgres.ErrDuplicateEmail
		}
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	clone := *p
	r.profiles[p.ID] = &clone
	return nil
}

func (r *InMemoryProfileRepository) GetByID(id uuid.UUID) (*profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.profiles[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *InMemoryProfileRepository) GetByEmail(email string) (*profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.profiles {
		if strings.EqualFold(stored.Email, email) {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (r *InMemoryProfileRepository) List(page, limit int) ([]*profile.Profile, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var profiles []*profile.Profile
	for _, stored := range r.profiles {
		clone := *stored
		profiles = append(profiles, &clone)
	}
	sort.Slice(profiles, func(a, b int) bool {
		return profiles[a].CreatedAt.After(profiles[b].CreatedAt)
	})

	total := int64(len(profiles))
	start := (page - 1) * limit
	if start >= len(profiles) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(profiles) {
		end = len(profiles)
	}
	return profiles[start:end], total, nil
}

func (r *InMemoryProfileRepository) Update(p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[p.ID]; !ok {
		return postgres.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	clone := *p
	r.profiles[p.ID] = &clone
	return nil
}

func (r *InMemoryProfileRepository) Deactivate(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.profiles[id]
	if !ok {
		return postgres.ErrNotFound
	}
	stored.IsActive = false
	return nil
}

func (r *InMemoryProfileRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.profiles)), nil
}

func (r *InMemoryProfileRepository) EngagementStats(limit int) ([]*postgres.UserEngagement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats []*postgres.UserEngagement
	for _, stored := range r.profiles {
		stats = append(stats, &postgres.UserEngagement{
			UserID:   stored.ID,
			FullName: stored.FullName(),
			JoinDate: stored.CreatedAt,
		})
	}
	sort.Slice(stats, func(a, b int) bool {
		return stats[a].JoinDate.Before(stats[b].JoinDate)
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}
