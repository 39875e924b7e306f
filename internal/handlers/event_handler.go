package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/civicpulse-api/internal/auth"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/response"
	"github.com/gravadigital/civicpulse-api/internal/services"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

// EventHandler handles community event and attendance endpoints
type EventHandler struct {
	service   *services.EventService
	eventRepo postgres.EventRepository
	log       *log.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(service *services.EventService, eventRepo postgres.EventRepository) *EventHandler {
	return &EventHandler{
		service:   service,
		eventRepo: eventRepo,
		log:       logger.Handler("event"),
	}
}

// List handles GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	upcomingOnly := c.DefaultQuery("upcoming", "false") == "true"

	page, limit := response.PageParams(c, 10)
	events, total, err := h.eventRepo.List(upcomingOnly, page, limit)
	if err != nil {
		h.log.Error("Failed to list events", "error", err)
		response.Internal(c, "Failed to list events")
		return
	}

	response.List(c, "events", events, response.NewPagination(page, limit, total))
}

// Create handles POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	created, err := h.service.Create(auth.UserID(c), req)
	if err != nil {
		writeServiceError(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := h.eventRepo.GetByID(id)
	if err != nil {
		writeServiceError(c, err, "Failed to load event")
		return
	}

	attending, err := h.eventRepo.CountAttending(id)
	if err != nil {
		response.Internal(c, "Failed to load event")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event":           found,
		"attending_count": attending,
	})
}

// Update handles PUT /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	updated, err := h.service.Update(id, auth.UserID(c), auth.IsAdmin(c), req)
	if err != nil {
		writeServiceError(c, err, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(id, auth.UserID(c), auth.IsAdmin(c)); err != nil {
		writeServiceError(c, err, "Failed to delete event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

type AttendRequest struct {
	Status string `json:"status" binding:"required"`
}

// Attend handles POST /api/events/:id/attend
func (h *EventHandler) Attend(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AttendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	attendance, attending, err := h.service.SetAttendance(id, auth.UserID(c), req.Status)
	if err != nil {
		writeServiceError(c, err, "Failed to record attendance")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attendance":      attendance,
		"attending_count": attending,
	})
}

// GetAttendance handles GET /api/events/:id/attend
func (h *EventHandler) GetAttendance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attending, err := h.eventRepo.CountAttending(id)
	if err != nil {
		response.Internal(c, "Failed to load attendance")
		return
	}

	body := gin.H{
		"attending_count": attending,
		"user_status":     nil,
	}

	attendance, err := h.eventRepo.GetAttendance(id, auth.UserID(c))
	if err == nil {
		body["user_status"] = attendance.Status
	} else if !errors.Is(err, postgres.ErrNotFound) {
		response.Internal(c, "Failed to load attendance")
		return
	}

	c.JSON(http.StatusOK, body)
}
