// Package services holds the business logic between the HTTP handlers
// and the repositories. Side effects that must not fail the main
// operation (audit trail rows, notifications) are logged and dropped.
package services

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/domain/notification"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
	"github.com/gravadigital/civicpulse-api/internal/validation"
)

// ErrForbidden is returned when the actor may not perform the operation
var ErrForbidden = errors.New("operation not allowed")

// IssueService handles the business logic for civic issues
type IssueService struct {
	issueRepo   postgres.IssueRepository
	voteRepo    postgres.VoteRepository
	commentRepo postgres.CommentRepository
	notifRepo   postgres.NotificationRepository
	validator   validation.IssueValidation
	log         *log.Logger
}

// NewIssueService creates a new issue service
func NewIssueService(
	issueRepo postgres.IssueRepository,
	voteRepo postgres.VoteRepository,
	commentRepo postgres.CommentRepository,
	notifRepo postgres.NotificationRepository,
) *IssueService {
	return &IssueService{
		issueRepo:   issueRepo,
		voteRepo:    voteRepo,
		commentRepo: commentRepo,
		notifRepo:   notifRepo,
		validator:   validation.IssueValidation{},
		log:         logger.Service("issue"),
	}
}

// CreateIssueRequest represents a request to report a new issue
type CreateIssueRequest struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description" binding:"required"`
	CategoryID      *string  `json:"category_id"`
	Priority        string   `json:"priority"`
	LocationAddress string   `json:"location_address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	ImageURLs       []string `json:"image_urls"`
	IsAnonymous     bool     `json:"is_anonymous"`
}

// Create reports a new issue on behalf of the given user
func (s *IssueService) Create(reporterID uuid.UUID, req CreateIssueRequest) (*issue.Issue, error) {
	if err := s.validator.ValidateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateDescription(req.Description); err != nil {
		return nil, err
	}

	newIssue := issue.NewIssue(req.Title, req.Description, reporterID)
	newIssue.LocationAddress = req.LocationAddress
	newIssue.Latitude = req.Latitude
	newIssue.Longitude = req.Longitude
	newIssue.ImageURLs = req.ImageURLs
	newIssue.IsAnonymous = req.IsAnonymous

	if req.Priority != "" {
		priority, ok := issue.PriorityFromString(req.Priority)
		if !ok {
			return nil, validation.NewError("invalid priority %q", req.Priority)
		}
		newIssue.Priority = priority
	}

	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, validation.NewError("category_id must be a valid UUID")
		}
		newIssue.CategoryID = &categoryID
	}

	if err := s.issueRepo.Create(newIssue); err != nil {
		return nil, err
	}

	return newIssue, nil
}

// UpdateIssueRequest represents a request to edit an issue
type UpdateIssueRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	CategoryID      *string  `json:"category_id"`
	Priority        *string  `json:"priority"`
	LocationAddress *string  `json:"location_address"`
	ImageURLs       []string `json:"image_urls"`
}

// Update edits an issue. Only the reporter or an admin may edit.
func (s *IssueService) Update(issueID, actorID uuid.UUID, isAdmin bool, req UpdateIssueRequest) (*issue.Issue, error) {
	existing, err := s.issueRepo.GetByID(issueID)
	if err != nil {
		return nil, err
	}

	if !existing.IsReporter(actorID) && !isAdmin {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		if err := s.validator.ValidateTitle(*req.Title); err != nil {
			return nil, err
		}
		existing.Title = *req.Title
	}
	if req.Description != nil {
		if err := s.validator.ValidateDescription(*req.Description); err != nil {
			return nil, err
		}
		existing.Description = *req.Description
	}
	if req.Priority != nil {
		priority, ok := issue.PriorityFromString(*req.Priority)
		if !ok {
			return nil, validation.NewError("invalid priority %q", *req.Priority)
		}
		existing.Priority = priority
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, validation.NewError("category_id must be a valid UUID")
		}
		existing.CategoryID = &categoryID
	}
	if req.LocationAddress != nil {
		existing.LocationAddress = *req.LocationAddress
	}
	if req.ImageURLs != nil {
		existing.ImageURLs = req.ImageURLs
	}

	if err := s.issueRepo.Update(existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete removes an issue. Only the reporter or an admin may delete.
func (s *IssueService) Delete(issueID, actorID uuid.UUID, isAdmin bool) error {
	existing, err := s.issueRepo.GetByID(issueID)
	if err != nil {
		return err
	}

	if !existing.IsReporter(actorID) && !isAdmin {
		return ErrForbidden
	}

	return s.issueRepo.Delete(issueID)
}

// ChangeStatus moves an issue to a new status, records the change in
// the audit trail and notifies the reporter. The audit row and the
// notification are best effort.
func (s *IssueService) ChangeStatus(issueID, actorID uuid.UUID, newStatusStr, adminNotes string) (*issue.Issue, error) {
	newStatus, ok := issue.StatusFromString(newStatusStr)
	if !ok {
		return nil, validation.NewError("invalid status %q", newStatusStr)
	}

	existing, err := s.issueRepo.GetByID(issueID)
	if err != nil {
		return nil, err
	}

	oldStatus := existing.Status
	existing.Status = newStatus
	if adminNotes != "" {
		existing.AdminNotes = adminNotes
	}

	if err := s.issueRepo.Update(existing); err != nil {
		return nil, err
	}

	if oldStatus != newStatus {
		update := issue.NewStatusUpdate(issueID, actorID, oldStatus, newStatus)
		if err := s.issueRepo.CreateStatusUpdate(update); err != nil {
			s.log.Warn("Failed to record status update", "issue_id", issueID, "error", err)
		}

		if existing.ReporterID != actorID {
			s.notify(existing.ReporterID,
				"Issue status updated",
				fmt.Sprintf("Your issue %q is now %s", existing.Title, newStatus),
				notification.TypeIssueStatusUpdate,
				&existing.ID,
			)
		}
	}

	return existing, nil
}

// ToggleVote applies one vote action and returns the outcome together
// with the fresh vote counts for the issue.
func (s *IssueService) ToggleVote(issueID, userID uuid.UUID, voteTypeStr string) (issue.VoteOutcome, int64, int64, error) {
	voteType, ok := issue.VoteTypeFromString(voteTypeStr)
	if !ok {
		return "", 0, 0, validation.NewError("invalid vote_type %q", voteTypeStr)
	}

	if _, err := s.issueRepo.GetByID(issueID); err != nil {
		return "", 0, 0, err
	}

	outcome, err := s.voteRepo.Toggle(issueID, userID, voteType)
	if err != nil {
		return "", 0, 0, err
	}

	up, down, err := s.voteRepo.CountByIssue(issueID)
	if err != nil {
		return "", 0, 0, err
	}

	return outcome, up, down, nil
}

// AddComment posts a comment on an issue and notifies the reporter.
// Admin comments are marked official.
func (s *IssueService) AddComment(issueID, userID uuid.UUID, isAdmin bool, content string, parentIDStr *string) (*issue.Comment, error) {
	if err := validation.ValidateRequired(content, "content"); err != nil {
		return nil, err
	}
	if err := validation.ValidateMaxLength(content, 2000, "content"); err != nil {
		return nil, err
	}

	existing, err := s.issueRepo.GetByID(issueID)
	if err != nil {
		return nil, err
	}

	comment := issue.NewComment(issueID, userID, content, isAdmin)
	if parentIDStr != nil {
		parentID, err := uuid.Parse(*parentIDStr)
		if err != nil {
			return nil, validation.NewError("parent_comment_id must be a valid UUID")
		}
		comment.ParentCommentID = &parentID
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	if existing.ReporterID != userID {
		s.notify(existing.ReporterID,
			"New comment on your issue",
			fmt.Sprintf("Someone commented on %q", existing.Title),
			notification.TypeIssueComment,
			&existing.ID,
		)
	}

	return comment, nil
}

// notify creates a notification without failing the caller
func (s *IssueService) notify(userID uuid.UUID, title, message, notifType string, relatedID *uuid.UUID) {
	n := notification.NewNotification(userID, title, message, notifType, relatedID)
	if err := s.notifRepo.Create(n); err != nil {
		s.log.Warn("Failed to create notification", "user_id", userID, "type", notifType, "error", err)
	}
}
