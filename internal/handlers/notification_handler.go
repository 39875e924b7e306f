package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/auth"
	"github.com/gravadigital/civicpulse-api/internal/domain/notification"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/response"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notifRepo postgres.NotificationRepository
	log       *log.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifRepo postgres.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notifRepo: notifRepo,
		log:       logger.Handler("notification"),
	}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly := c.DefaultQuery("unread", "false") == "true"

	page, limit := response.PageParams(c, 20)
	notifications, total, err := h.notifRepo.ListByUser(auth.UserID(c), unreadOnly, page, limit)
	if err != nil {
		h.log.Error("Failed to list notifications", "error", err)
		response.Internal(c, "Failed to list notifications")
		return
	}

	response.List(c, "notifications", notifications, response.NewPagination(page, limit, total))
}

type CreateNotificationRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// Create handles POST /api/notifications (admin only). Used to push
// system announcements to a user.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(c, "user_id must be a valid UUID")
		return
	}

	n := notification.NewNotification(userID, req.Title, req.Message, notification.TypeSystem, nil)
	if err := h.notifRepo.Create(n); err != nil {
		writeServiceError(c, err, "Failed to create notification")
		return
	}

	c.JSON(http.StatusCreated, n)
}

// MarkRead handles PUT /api/notifications/:id/read. Users can only
// mark their own notifications.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	n, err := h.notifRepo.MarkRead(id, auth.UserID(c))
	if err != nil {
		writeServiceError(c, err, "Failed to mark notification read")
		return
	}

	c.JSON(http.StatusOK, n)
}
