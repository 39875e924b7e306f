// Package memory provides in-memory repository implementations used by
// unit tests. They mirror the PostgreSQL behavior closely enough to
// exercise the service and handler layers without a database.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// InMemoryIssueRepository implements postgres.IssueRepository
type InMemoryIssueRepository struct {
	mu         sync.RWMutex
	issues     map[uuid.UUID]*issue.Issue
	categories map[uuid.UUID]*issue.Category
	updates    []*issue.StatusUpdate
}

// NewInMemoryIssueRepository creates an empty issue repository
func NewInMemoryIssueRepository() *InMemoryIssueRepository {
	return &InMemoryIssueRepository{
		issues:     make(map[uuid.UUID]*issue.Issue),
		categories: make(map[uuid.UUID]*issue.Category),
	}
}

func (r *InMemoryIssueRepository) Create(i *issue.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now()
	}
	i.UpdatedAt = time.Now()

	clone := *i
	r.issues[i.ID] = &clone
	return nil
}

func (r *InMemoryIssueRepository) GetByID(id uuid.UUID) (*issue.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.issues[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *InMemoryIssueRepository) List(filter postgres.IssueFilter, page, limit int) ([]*issue.Issue, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*issue.Issue
	for _, stored := range r.issues {
		if filter.CategoryID != nil {
			if stored.CategoryID == nil || *stored.CategoryID != *filter.CategoryID {
				continue
			}
		}
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && stored.Priority != *filter.Priority {
			continue
		}
		clone := *stored
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(a, b int) bool {
		if filter.SortDesc {
			return matched[a].CreatedAt.After(matched[b].CreatedAt)
		}
		return matched[a].CreatedAt.Before(matched[b].CreatedAt)
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

func (r *InMemoryIssueRepository) Update(i *issue.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.issues[i.ID]; !ok {
		return postgres.ErrNotFound
	}
	i.UpdatedAt = time.Now()
	clone := *i
	r.issues[i.ID] = &clone
	return nil
}

func (r *InMemoryIssueRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.issues[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(r.issues, id)
	return nil
}

func (r *InMemoryIssueRepository) IncrementViewCount(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.issues[id]
	if !ok {
		return postgres.ErrNotFound
	}
	stored.ViewCount++
	return nil
}

func (r *InMemoryIssueRepository) CreateStatusUpdate(u *issue.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	clone := *u
	r.updates = append(r.updates, &clone)
	return nil
}

// StatusUpdates returns the recorded audit trail for assertions in tests
func (r *InMemoryIssueRepository) StatusUpdates() []*issue.StatusUpdate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*issue.StatusUpdate(nil), r.updates...)
}

func (r *InMemoryIssueRepository) CreateCategory(c *issue.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	clone := *c
	r.categories[c.ID] = &clone
	return nil
}

func (r *InMemoryIssueRepository) GetAllCategories() ([]*issue.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var categories []*issue.Category
	for _, stored := range r.categories {
		clone := *stored
		categories = append(categories, &clone)
	}
	sort.Slice(categories, func(a, b int) bool {
		return categories[a].Name < categories[b].Name
	})
	return categories, nil
}

func (r *InMemoryIssueRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.issues)), nil
}

func (r *InMemoryIssueRepository) CountSince(t time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, stored := range r.issues {
		if stored.CreatedAt.After(t) {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryIssueRepository) CountByStatus(s issue.Status) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, stored := range r.issues {
		if stored.Status == s {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryIssueRepository) CountsByStatus() (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, stored := range r.issues {
		counts[stored.Status.String()]++
	}
	return counts, nil
}

func (r *InMemoryIssueRepository) CountsByPriority() (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, stored := range r.issues {
		counts[stored.Priority.String()]++
	}
	return counts, nil
}

func (r *InMemoryIssueRepository) CountsByCategory() (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, stored := range r.issues {
		name := "Uncategorized"
		if stored.CategoryID != nil {
			if category, ok := r.categories[*stored.CategoryID]; ok {
				name = category.Name
			}
		}
		counts[name]++
	}
	return counts, nil
}

func (r *InMemoryIssueRepository) MonthlyCounts(since time.Time) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, stored := range r.issues {
		if stored.CreatedAt.Before(since) {
			continue
		}
		counts[stored.CreatedAt.Format("2006-01")]++
	}
	return counts, nil
}

func (r *InMemoryIssueRepository) ListRecent(limit int) ([]*issue.Issue, error) {
	issues, _, err := r.List(postgres.IssueFilter{SortBy: "created_at", SortDesc: true}, 1, limit)
	return issues, err
}

func (r *InMemoryIssueRepository) CountByReporter(userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, stored := range r.issues {
		if stored.ReporterID == userID {
			count++
		}
	}
	return count, nil
}
