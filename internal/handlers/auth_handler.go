package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/civicpulse-api/internal/auth"
	"github.com/gravadigital/civicpulse-api/internal/domain/profile"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/response"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
	"github.com/gravadigital/civicpulse-api/internal/validation"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	profileRepo postgres.ProfileRepository
	issuer      *auth.TokenIssuer
	log         *log.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(profileRepo postgres.ProfileRepository, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		profileRepo: profileRepo,
		issuer:      issuer,
		log:         logger.Handler("auth"),
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p := profile.NewProfile(strings.ToLower(req.Email), hash, req.FirstName, req.LastName)
	if err := h.profileRepo.Create(p); err != nil {
		if errors.Is(err, postgres.ErrDuplicateEmail) {
			response.BadRequest(c, "Email already registered")
			return
		}
		h.log.Error("Registration failed", "email", req.Email, "error", err)
		response.Internal(c, "Failed to register")
		return
	}

	token, err := h.issuer.Issue(p)
	if err != nil {
		h.log.Error("Token issuance failed", "user_id", p.ID, "error", err)
		response.Internal(c, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"profile": p,
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	p, err := h.profileRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.Error(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		response.Internal(c, "Failed to log in")
		return
	}

	if !p.IsActive {
		response.Error(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := auth.CheckPassword(p.PasswordHash, req.Password); err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.issuer.Issue(p)
	if err != nil {
		h.log.Error("Token issuance failed", "user_id", p.ID, "error", err)
		response.Internal(c, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"profile": p,
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, err := h.profileRepo.GetByID(auth.UserID(c))
	if err != nil {
		writeServiceError(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, p)
}
