package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/ai"
	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/response"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// AIHandler exposes the LLM-backed helpers. The model never sits on a
// write path; every route here is advisory.
type AIHandler struct {
	client      *ai.Client
	issueRepo   postgres.IssueRepository
	commentRepo postgres.CommentRepository
	log         *log.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(client *ai.Client, issueRepo postgres.IssueRepository, commentRepo postgres.CommentRepository) *AIHandler {
	return &AIHandler{
		client:      client,
		issueRepo:   issueRepo,
		commentRepo: commentRepo,
		log:         logger.Handler("ai"),
	}
}

type CategorizeRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// Categorize handles POST /api/ai/categorize
func (h *AIHandler) Categorize(c *gin.Context) {
	var req CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	categories, err := h.issueRepo.GetAllCategories()
	if err != nil {
		response.Internal(c, "Failed to categorize")
		return
	}
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}

	result, err := h.client.CategorizeIssue(c.Request.Context(), req.Title, req.Description, names)
	if err != nil {
		h.writeAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type ModerateRequest struct {
	Content string `json:"content" binding:"required"`
}

// Moderate handles POST /api/ai/moderate
func (h *AIHandler) Moderate(c *gin.Context) {
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	result, err := h.client.ModerateContent(c.Request.Context(), req.Content)
	if err != nil {
		h.writeAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type IssueRefRequest struct {
	IssueID string `json:"issue_id" binding:"required"`
}

// Solutions handles POST /api/ai/solutions
func (h *AIHandler) Solutions(c *gin.Context) {
	iss, ok := h.loadIssue(c)
	if !ok {
		return
	}

	suggestions, err := h.client.SuggestSolutions(c.Request.Context(), iss)
	if err != nil {
		h.writeAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Summarize handles POST /api/ai/summarize (admin only)
func (h *AIHandler) Summarize(c *gin.Context) {
	iss, ok := h.loadIssue(c)
	if !ok {
		return
	}

	comments, err := h.commentRepo.ListByIssue(iss.ID)
	if err != nil {
		response.Internal(c, "Failed to summarize")
		return
	}

	summary, err := h.client.SummarizeIssue(c.Request.Context(), iss, comments)
	if err != nil {
		h.writeAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Analytics handles GET /api/ai/analytics (admin only)
func (h *AIHandler) Analytics(c *gin.Context) {
	issues, err := h.issueRepo.ListRecent(50)
	if err != nil {
		response.Internal(c, "Failed to analyze engagement")
		return
	}

	analysis, err := h.client.AnalyzeEngagement(c.Request.Context(), issues)
	if err != nil {
		h.writeAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

func (h *AIHandler) loadIssue(c *gin.Context) (*issue.Issue, bool) {
	var req IssueRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return nil, false
	}

	id, err := uuid.Parse(req.IssueID)
	if err != nil {
		response.BadRequest(c, "issue_id must be a valid UUID")
		return nil, false
	}

	found, err := h.issueRepo.GetByID(id)
	if err != nil {
		writeServiceError(c, err, "Failed to load issue")
		return nil, false
	}
	return found, true
}

func (h *AIHandler) writeAIError(c *gin.Context, err error) {
	if errors.Is(err, ai.ErrDisabled) {
		response.Error(c, http.StatusServiceUnavailable, "AI features are not configured")
		return
	}
	h.log.Error("AI request failed", "error", err)
	response.Internal(c, "AI request failed")
}
