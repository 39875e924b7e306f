package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/auth"
	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/response"
	"github.com/gravadigital/civicpulse-api/internal/services"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// IssueHandler handles issue, vote, comment and category endpoints
type IssueHandler struct {
	service     *services.IssueService
	issueRepo   postgres.IssueRepository
	voteRepo    postgres.VoteRepository
	commentRepo postgres.CommentRepository
	log         *log.Logger
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(
	service *services.IssueService,
	issueRepo postgres.IssueRepository,
	voteRepo postgres.VoteRepository,
	commentRepo postgres.CommentRepository,
) *IssueHandler {
	return &IssueHandler{
		service:     service,
		issueRepo:   issueRepo,
		voteRepo:    voteRepo,
		commentRepo: commentRepo,
		log:         logger.Handler("issue"),
	}
}

// List handles GET /api/issues
func (h *IssueHandler) List(c *gin.Context) {
	filter := postgres.IssueFilter{
		SortBy:   c.DefaultQuery("sortBy", "created_at"),
		SortDesc: c.DefaultQuery("sortOrder", "desc") != "asc",
	}

	if categoryStr := c.Query("category"); categoryStr != "" {
		categoryID, err := uuid.Parse(categoryStr)
		if err != nil {
			response.BadRequest(c, "category must be a valid UUID")
			return
		}
		filter.CategoryID = &categoryID
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
		h.log.Error("Failed to list issues", "error", err)
		response.Internal(c, "Failed to list issues")
		return
	}

	response.List(c, "issues", issues, response.NewPagination(page, limit, total))
}

// Create handles POST /api/issues
func (h *IssueHandler) Create(c *gin.Context) {
	var req services.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	created, err := h.service.Create(auth.UserID(c), req)
	if err != nil {
		writeServiceError(c, err, "Failed to create issue")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/issues/:id. Each fetch counts as a view.
func (h *IssueHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := h.issueRepo.GetByID(id)
	if err != nil {
		writeServiceError(c, err, "Failed to load issue")
		return
	}

	if err := h.issueRepo.IncrementViewCount(id); err != nil {
		h.log.Warn("Failed to increment view count", "issue_id", id, "error", err)
	} else {
		found.ViewCount++
	}

	up, down, err := h.voteRepo.CountByIssue(id)
	if err != nil {
		response.Internal(c, "Failed to load issue")
		return
	}
	commentCount, err := h.commentRepo.CountByIssue(id)
	if err != nil {
		response.Internal(c, "Failed to load issue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issue":         found,
		"votes":         gin.H{"up": up, "down": down},
		"comment_count": commentCount,
	})
}

// Update handles PUT /api/issues/:id
func (h *IssueHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	updated, err := h.service.Update(id, auth.UserID(c), auth.IsAdmin(c), req)
	if err != nil {
		writeServiceError(c, err, "Failed to update issue")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/issues/:id
func (h *IssueHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(id, auth.UserID(c), auth.IsAdmin(c)); err != nil {
		writeServiceError(c, err, "Failed to delete issue")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted"})
}

type VoteRequest struct {
	VoteType string `json:"vote_type" binding:"required"`
}

// Vote handles POST /api/issues/:id/vote
func (h *IssueHandler) Vote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	outcome, up, down, err := h.service.ToggleVote(id, auth.UserID(c), req.VoteType)
	if err != nil {
		writeServiceError(c, err, "Failed to record vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome": outcome,
		"votes":   gin.H{"up": up, "down": down},
	})
}

// GetVote handles GET /api/issues/:id/vote
func (h *IssueHandler) GetVote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	up, down, err := h.voteRepo.CountByIssue(id)
	if err != nil {
		response.Internal(c, "Failed to load votes")
		return
	}

	body := gin.H{
		"votes":     gin.H{"up": up, "down": down},
		"user_vote": nil,
	}

	vote, err := h.voteRepo.GetByIssueAndUser(id, auth.UserID(c))
	if err == nil {
		body["user_vote"] = vote.VoteType
	} else if !errors.Is(err, postgres.ErrNotFound) {
		response.Internal(c, "Failed to load votes")
		return
	}

	c.JSON(http.StatusOK, body)
}

// ListComments handles GET /api/issues/:id/comments
func (h *IssueHandler) ListComments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.issueRepo.GetByID(id); err != nil {
		writeServiceError(c, err, "Failed to load comments")
		return
	}

	comments, err := h.commentRepo.ListByIssue(id)
	if err != nil {
		response.Internal(c, "Failed to load comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type CreateCommentRequest struct {
	Content         string  `json:"content" binding:"required"`
	ParentCommentID *string `json:"parent_comment_id"`
}

// CreateComment handles POST /api/issues/:id/comments
func (h *IssueHandler) CreateComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	comment, err := h.service.AddComment(id, auth.UserID(c), auth.IsAdmin(c), req.Content, req.ParentCommentID)
	if err != nil {
		writeServiceError(c, err, "Failed to post comment")
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListCategories handles GET /api/issues/categories
func (h *IssueHandler) ListCategories(c *gin.Context) {
	categories, err := h.issueRepo.GetAllCategories()
	if err != nil {
		response.Internal(c, "Failed to load categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// CreateCategory handles POST /api/issues/categories (admin only)
func (h *IssueHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	category := &issue.Category{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	}
	if err := h.issueRepo.CreateCategory(category); err != nil {
		h.log.Error("Failed to create category", "name", req.Name, "error", err)
		response.Internal(c, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// Stats handles GET /api/issues/stats
func (h *IssueHandler) Stats(c *gin.Context) {
	total, err := h.issueRepo.Count()
	if err != nil {
		response.Internal(c, "Failed to load stats")
		return
	}
	byStatus, err := h.issueRepo.CountsByStatus()
	if err != nil {
		response.Internal(c, "Failed to load stats")
		return
	}
	byCategory, err := h.issueRepo.CountsByCategory()
	if err != nil {
		response.Internal(c, "Failed to load stats")
		return
	}
	recent, err := h.issueRepo.CountSince(time.Now().AddDate(0, 0, -30))
	if err != nil {
		response.Internal(c, "Failed to load stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"by_status":   byStatus,
		"by_category": byCategory,
		"recent_30d":  recent,
	})
}
