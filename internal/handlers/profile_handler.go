package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/civicpulse-api/internal/auth"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/response"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// ProfileHandler handles public profile endpoints
type ProfileHandler struct {
	profileRepo postgres.ProfileRepository
	issueRepo   postgres.IssueRepository
	voteRepo    postgres.VoteRepository
	commentRepo postgres.CommentRepository
	eventRepo   postgres.EventRepository
	log         *log.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(
	profileRepo postgres.ProfileRepository,
	issueRepo postgres.IssueRepository,
	voteRepo postgres.VoteRepository,
	commentRepo postgres.CommentRepository,
	eventRepo postgres.EventRepository,
) *ProfileHandler {
	return &ProfileHandler{
		profileRepo: profileRepo,
		issueRepo:   issueRepo,
		voteRepo:    voteRepo,
		commentRepo: commentRepo,
		eventRepo:   eventRepo,
		log:         logger.Handler("profile"),
	}
}

// List handles GET /api/profiles
func (h *ProfileHandler) List(c *gin.Context) {
	page, limit := response.PageParams(c, 10)
	profiles, total, err := h.profileRepo.List(page, limit)
	if err != nil {
		h.log.Error("Failed to list profiles", "error", err)
		response.Internal(c, "Failed to list profiles")
		return
	}

	response.List(c, "profiles", profiles, response.NewPagination(page, limit, total))
}

// Get handles GET /api/profiles/:id, returning the profile together
// with its activity stats.
func (h *ProfileHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.profileRepo.GetByID(id)
	if err != nil {
		writeServiceError(c, err, "Failed to load profile")
		return
	}

	issuesCreated, err := h.issueRepo.CountByReporter(id)
	if err != nil {
		response.Internal(c, "Failed to load profile")
		return
	}
	commentsPosted, err := h.commentRepo.CountByUser(id)
	if err != nil {
		response.Internal(c, "Failed to load profile")
		return
	}
	votesGiven, err := h.voteRepo.CountByUser(id)
	if err != nil {
		response.Internal(c, "Failed to load profile")
		return
	}
	eventsOrganized, err := h.eventRepo.CountByOrganizer(id)
	if err != nil {
		response.Internal(c, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": p,
		"stats": gin.H{
			"issues_created":   issuesCreated,
			"comments_posted":  commentsPosted,
			"votes_given":      votesGiven,
			"events_organized": eventsOrganized,
		},
	})
}

type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	ZipCode     *string `json:"zip_code"`
	AvatarURL   *string `json:"avatar_url"`
}

// Update handles PUT /api/profiles/:id. Users may only edit their own
// profile; role and active flag are admin-only and not editable here.
func (h *ProfileHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if auth.UserID(c) != id {
		response.Forbidden(c, "You can only edit your own profile")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	p, err := h.profileRepo.GetByID(id)
	if err != nil {
		writeServiceError(c, err, "Failed to update profile")
		return
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.ZipCode != nil {
		p.ZipCode = *req.ZipCode
	}
	if req.AvatarURL != nil {
		p.AvatarURL = *req.AvatarURL
	}

	if err := h.profileRepo.Update(p); err != nil {
		writeServiceError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, p)
}
