package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/civicpulse-api/internal/auth"
	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/domain/profile"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/response"
	"github.com/gravadigital/civicpulse-api/internal/services"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// AdminHandler handles moderation, user management and reporting.
// All routes are behind the admin role middleware.
type AdminHandler struct {
	issueService *services.IssueService
	issueRepo    postgres.IssueRepository
	voteRepo     postgres.VoteRepository
	commentRepo  postgres.CommentRepository
	eventRepo    postgres.EventRepository
	profileRepo  postgres.ProfileRepository
	log          *log.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	issueService *services.IssueService,
	issueRepo postgres.IssueRepository,
	voteRepo postgres.VoteRepository,
	commentRepo postgres.CommentRepository,
	eventRepo postgres.EventRepository,
	profileRepo postgres.ProfileRepository,
) *AdminHandler {
	return &AdminHandler{
		issueService: issueService,
		issueRepo:    issueRepo,
		voteRepo:     voteRepo,
		commentRepo:  commentRepo,
		eventRepo:    eventRepo,
		profileRepo:  profileRepo,
		log:          logger.Handler("admin"),
	}
}

// Dashboard handles GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	totalUsers, err := h.profileRepo.Count()
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}
	totalIssues, err := h.issueRepo.Count()
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}
	totalEvents, err := h.eventRepo.Count()
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}
	openIssues, err := h.issueRepo.CountByStatus(issue.StatusOpen)
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}
	inProgressIssues, err := h.issueRepo.CountByStatus(issue.StatusInProgress)
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}
	resolvedIssues, err := h.issueRepo.CountByStatus(issue.StatusResolved)
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}
	recentIssues, err := h.issueRepo.ListRecent(5)
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}
	recentEvents, err := h.eventRepo.ListRecent(5)
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}
	byCategory, err := h.issueRepo.CountsByCategory()
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}
	monthlyTrend, err := h.issueRepo.MonthlyCounts(time.Now().AddDate(0, -6, 0))
	if err != nil {
		response.Internal(c, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totals": gin.H{
			"users":  totalUsers,
			"issues": totalIssues,
			"events": totalEvents,
		},
		"issues": gin.H{
			"open":        openIssues,
			"in_progress": inProgressIssues,
			"resolved":    resolvedIssues,
		},
		"recent_issues":  recentIssues,
		"recent_events":  recentEvents,
		"by_category":    byCategory,
		"monthly_trend":  monthlyTrend,
	})
}

// ListIssues handles GET /api/admin/issues
func (h *AdminHandler) ListIssues(c *gin.Context) {
	filter := postgres.IssueFilter{
		SortBy:   c.DefaultQuery("sortBy", "created_at"),
		SortDesc: c.DefaultQuery("sortOrder", "desc") != "asc",
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status, ok := issue.StatusFromString(statusStr)
		if !ok {
			response.BadRequest(c, "invalid status filter")
			return
		}
		filter.Status = &status
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		priority, ok := issue.PriorityFromString(priorityStr)
		if !ok {
			response.BadRequest(c, "invalid priority filter")
			return
		}
		filter.Priority = &priority
	}

	page, limit := response.PageParams(c, 10)
	issues, total, err := h.issueRepo.List(filter, page, limit)
	if err != nil {
		response.Internal(c, "Failed to list issues")
		return
	}

	response.List(c, "issues", issues, response.NewPagination(page, limit, total))
}

type ChangeStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"admin_notes"`
}

// ChangeIssueStatus handles PATCH /api/admin/issues/:id/status
func (h *AdminHandler) ChangeIssueStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	updated, err := h.issueService.ChangeStatus(id, auth.UserID(c), req.Status, req.AdminNotes)
	if err != nil {
		writeServiceError(c, err, "Failed to change issue status")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := response.PageParams(c, 10)
	profiles, total, err := h.profileRepo.List(page, limit)
	if err != nil {
		response.Internal(c, "Failed to list users")
		return
	}

	response.List(c, "users", profiles, response.NewPagination(page, limit, total))
}

type PatchUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// PatchUser handles PATCH /api/admin/users/:id. A partial update:
// absent fields stay untouched.
func (h *AdminHandler) PatchUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PatchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	p, err := h.profileRepo.GetByID(id)
	if err != nil {
		writeServiceError(c, err, "Failed to update user")
		return
	}

	if req.Role != nil {
		role, ok := profile.RoleFromString(*req.Role)
		if !ok {
			response.BadRequest(c, "invalid role")
			return
		}
		p.Role = role
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := h.profileRepo.Update(p); err != nil {
		writeServiceError(c, err, "Failed to update user")
		return
	}

	h.log.Info("User updated by admin", "user_id", id, "admin_id", auth.UserID(c))
	c.JSON(http.StatusOK, p)
}

// DeleteUser handles DELETE /api/admin/users/:id. Users are
// deactivated, never hard-deleted.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.profileRepo.Deactivate(id); err != nil {
		writeServiceError(c, err, "Failed to deactivate user")
		return
	}

	h.log.Info("User deactivated by admin", "user_id", id, "admin_id", auth.UserID(c))
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}

// Reports handles GET /api/admin/reports?type=...
func (h *AdminHandler) Reports(c *gin.Context) {
	switch c.Query("type") {
	case "summary":
		h.summaryReport(c)
	case "user_engagement":
		h.engagementReport(c)
	case "issue_analytics":
		h.issueAnalyticsReport(c)
	default:
		response.BadRequest(c, "type must be one of: summary, user_engagement, issue_analytics")
	}
}

func (h *AdminHandler) summaryReport(c *gin.Context) {
	users, err := h.profileRepo.Count()
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}
	issues, err := h.issueRepo.Count()
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}
	events, err := h.eventRepo.Count()
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}
	votes, err := h.voteRepo.Count()
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}
	comments, err := h.commentRepo.Count()
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type": "summary",
		"data": gin.H{
			"total_users":    users,
			"total_issues":   issues,
			"total_events":   events,
			"total_votes":    votes,
			"total_comments": comments,
		},
	})
}

func (h *AdminHandler) engagementReport(c *gin.Context) {
	stats, err := h.profileRepo.EngagementStats(100)
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type": "user_engagement",
		"data": stats,
	})
}

func (h *AdminHandler) issueAnalyticsReport(c *gin.Context) {
	byStatus, err := h.issueRepo.CountsByStatus()
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}
	byPriority, err := h.issueRepo.CountsByPriority()
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}
	byCategory, err := h.issueRepo.CountsByCategory()
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}
	monthly, err := h.issueRepo.MonthlyCounts(time.Now().AddDate(-1, 0, 0))
	if err != nil {
		response.Internal(c, "Failed to build report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type": "issue_analytics",
		"data": gin.H{
			"by_status":   byStatus,
			"by_priority": byPriority,
			"by_category": byCategory,
			"monthly":     monthly,
		},
	})
}
