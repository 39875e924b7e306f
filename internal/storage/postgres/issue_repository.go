package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/logger"
)

// PostgresIssueRepository implements IssueRepository using GORM
type PostgresIssueRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresIssueRepository creates a new PostgreSQL issue repository
func NewPostgresIssueRepository(db *gorm.DB) *PostgresIssueRepository {
	return &PostgresIssueRepository{
		db:  db,
		log: logger.Repository("issue"),
	}
}

func (r *PostgresIssueRepository) Create(i *issue.Issue) error {
	if err := i.Validate(); err != nil {
		return fmt.Errorf("issue validation failed: %w", err)
	}

	if err := r.db.Create(i).Error; err != nil {
		r.log.Error("Failed to create issue", "error", err, "title", i.Title)
		return fmt.Errorf("failed to create issue: %w", err)
	}

	r.log.Info("Issue created", "id", i.ID, "reporter_id", i.ReporterID)
	return nil
}

func (r *PostgresIssueRepository) GetByID(id uuid.UUID) (*issue.Issue, error) {
	var i issue.Issue
	if err := r.db.First(&i, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		r.log.Error("Failed to get issue by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return &i, nil
}

func (r *PostgresIssueRepository) List(filter IssueFilter, page, limit int) ([]*issue.Issue, int64, error) {
	query := r.db.Model(&issue.Issue{})

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.log.Error("Failed to count issues", "error", err)
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	sortBy := filter.SortBy
	switch sortBy {
	case "created_at", "updated_at", "priority", "status", "view_count":
	default:
		sortBy = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	var issues []*issue.Issue
	offset := (page - 1) * limit
	if err := query.Order(sortBy + " " + direction).
		Offset(offset).Limit(limit).
		Find(&issues).Error; err != nil {
		r.log.Error("Failed to list issues", "error", err)
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}

	return issues, total, nil
}

func (r *PostgresIssueRepository) Update(i *issue.Issue) error {
	if err := i.Validate(); err != nil {
		return fmt.Errorf("issue validation failed: %w", err)
	}

	if err := r.db.Save(i).Error; err != nil {
		r.log.Error("Failed to update issue", "error", err, "id", i.ID)
		return fmt.Errorf("failed to update issue: %w", err)
	}

	r.log.Info("Issue updated", "id", i.ID, "status", i.Status)
	return nil
}

func (r *PostgresIssueRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&issue.Issue{}, "id = ?", id)
	if result.Error != nil {
		r.log.Error("Failed to delete issue", "error", result.Error, "id", id)
		return fmt.Errorf("failed to delete issue: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.log.Info("Issue deleted", "id", id)
	return nil
}

// IncrementViewCount bumps the counter atomically in the database
func (r *PostgresIssueRepository) IncrementViewCount(id uuid.UUID) error {
	if err := r.db.Model(&issue.Issue{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return nil
}

func (r *PostgresIssueRepository) CreateStatusUpdate(u *issue.StatusUpdate) error {
	if err := r.db.Create(u).Error; err != nil {
		r.log.Error("Failed to create status update", "error", err, "issue_id", u.IssueID)
		return fmt.Errorf("failed to create status update: %w", err)
	}
	return nil
}

func (r *PostgresIssueRepository) CreateCategory(c *issue.Category) error {
	if c.Name == "" {
		return fmt.Errorf("category name is required")
	}

	if err := r.db.Create(c).Error; err != nil {
		r.log.Error("Failed to create category", "error", err, "name", c.Name)
		return fmt.Errorf("failed to create category: %w", err)
	}

	r.log.Info("Category created", "id", c.ID, "name", c.Name)
	return nil
}

func (r *PostgresIssueRepository) GetAllCategories() ([]*issue.Category, error) {
	var categories []*issue.Category
	if err := r.db.Order("name").Find(&categories).Error; err != nil {
		r.log.Error("Failed to get categories", "error", err)
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (r *PostgresIssueRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&issue.Issue{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count issues: %w", err)
	}
	return count, nil
}

func (r *PostgresIssueRepository) CountSince(t time.Time) (int64, error) {
	var count int64
	if err := r.db.Model(&issue.Issue{}).
		Where("created_at >= ?", t).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent issues: %w", err)
	}
	return count, nil
}

func (r *PostgresIssueRepository) CountByStatus(s issue.Status) (int64, error) {
	var count int64
	if err := r.db.Model(&issue.Issue{}).
		Where("status = ?", s).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count issues by status: %w", err)
	}
	return count, nil
}

type groupCount struct {
	Key   string
	Count int64
}

func (r *PostgresIssueRepository) CountsByStatus() (map[string]int64, error) {
	return r.groupCounts("status::text AS key, COUNT(*) AS count", "status")
}

func (r *PostgresIssueRepository) CountsByPriority() (map[string]int64, error) {
	return r.groupCounts("priority::text AS key, COUNT(*) AS count", "priority")
}

func (r *PostgresIssueRepository) groupCounts(selectExpr, groupExpr string) (map[string]int64, error) {
	var rows []groupCount
	if err := r.db.Model(&issue.Issue{}).
		Select(selectExpr).
		Group(groupExpr).
		Scan(&rows).Error; err != nil {
		r.log.Error("Failed to aggregate issues", "group", groupExpr, "error", err)
		return nil, fmt.Errorf("failed to aggregate issues by %s: %w", groupExpr, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *PostgresIssueRepository) CountsByCategory() (map[string]int64, error) {
	var rows []groupCount
	if err := r.db.Model(&issue.Issue{}).
		Select("COALESCE(issue_categories.name, 'Uncategorized') AS key, COUNT(*) AS count").
		Joins("LEFT JOIN issue_categories ON issue_categories.id = civic_issues.category_id").
		Group("issue_categories.name").
		Scan(&rows).Error; err != nil {
		r.log.Error("Failed to aggregate issues by category", "error", err)
		return nil, fmt.Errorf("failed to aggregate issues by category: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *PostgresIssueRepository) MonthlyCounts(since time.Time) (map[string]int64, error) {
	var rows []groupCount
	if err := r.db.Model(&issue.Issue{}).
		Select("to_char(created_at, 'YYYY-MM') AS key, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("to_char(created_at, 'YYYY-MM')").
		Scan(&rows).Error; err != nil {
		r.log.Error("Failed to aggregate monthly issue counts", "error", err)
		return nil, fmt.Errorf("failed to aggregate monthly issue counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *PostgresIssueRepository) ListRecent(limit int) ([]*issue.Issue, error) {
	var issues []*issue.Issue
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent issues: %w", err)
	}
	return issues, nil
}

func (r *PostgresIssueRepository) CountByReporter(userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&issue.Issue{}).
		Where("reporter_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count issues by reporter: %w", err)
	}
	return count, nil
}
