package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/domain/notification"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/storage/memory"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

type issueFixture struct {
	service     *IssueService
	issueRepo   *memory.InMemoryIssueRepository
	voteRepo    *memory.InMemoryVoteRepository
	commentRepo *memory.InMemoryCommentRepository
	notifRepo   *memory.InMemoryNotificationRepository
}

func newIssueFixture(t *testing.T) *issueFixture {
	t.Helper()
	logger.Initialize("error")

	issueRepo := memory.NewInMemoryIssueRepository()
	voteRepo := memory.NewInMemoryVoteRepository()
	commentRepo := memory.NewInMemoryCommentRepository()
	notifRepo := memory.NewInMemoryNotificationRepository()

	return &issueFixture{
		service:     NewIssueService(issueRepo, voteRepo, commentRepo, notifRepo),
		issueRepo:   issueRepo,
		voteRepo:    voteRepo,
		commentRepo: commentRepo,
		notifRepo:   notifRepo,
	}
}

func (f *issueFixture) createIssue(t *testing.T, reporterID uuid.UUID) *issue.Issue {
	t.Helper()
	created, err := f.service.Create(reporterID, CreateIssueRequest{
		Title:       "Pothole on Main St",
		Description: "Deep pothole near the intersection",
	})
	require.NoError(t, err)
	return created
}

func TestCreateIssueDefaults(t *testing.T) {
	f := newIssueFixture(t)
	reporterID := uuid.New()

	created := f.createIssue(t, reporterID)

	assert.Equal(t, issue.StatusOpen, created.Status)
	assert.Equal(t, issue.PriorityMedium, created.Priority)
	assert.Equal(t, reporterID, created.ReporterID)
}

func TestCreateIssueRejectsBadPriority(t *testing.T) {
	f := newIssueFixture(t)

	_, err := f.service.Create(uuid.New(), CreateIssueRequest{
		Title:       "Title",
		Description: "Description",
		Priority:    "apocalyptic",
	})
	assert.Error(t, err)
}

func TestUpdateIssueForbiddenForStrangers(t *testing.T) {
	f := newIssueFixture(t)
	created := f.createIssue(t, uuid.New())

	newTitle := "Hijacked title"
	_, err := f.service.Update(created.ID, uuid.New(), false, UpdateIssueRequest{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	// Admins may edit any issue
	updated, err := f.service.Update(created.ID, uuid.New(), true, UpdateIssueRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
}

func TestDeleteIssueOwnerOrAdminOnly(t *testing.T) {
	f := newIssueFixture(t)
	reporterID := uuid.New()
	created := f.createIssue(t, reporterID)

	assert.ErrorIs(t, f.service.Delete(created.ID, uuid.New(), false), ErrForbidden)
	assert.NoError(t, f.service.Delete(created.ID, reporterID, false))

	_, err := f.issueRepo.GetByID(created.ID)
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestVoteToggleIdempotence(t *testing.T) {
	f := newIssueFixture(t)
	created := f.createIssue(t, uuid.New())
	voterID := uuid.New()

	// First up vote creates a row
	outcome, up, down, err := f.service.ToggleVote(created.ID, voterID, "up")
	require.NoError(t, err)
	assert.Equal(t, issue.VoteCreated, outcome)
	assert.Equal(t, int64(1), up)
	assert.Equal(t, int64(0), down)

	// Same vote again removes it
	outcome, up, down, err = f.service.ToggleVote(created.ID, voterID, "up")
	require.NoError(t, err)
	assert.Equal(t, issue.VoteRemoved, outcome)
	assert.Equal(t, int64(0), up)
	assert.Equal(t, int64(0), down)
}

func TestVoteSwitchKeepsOneRow(t *testing.T) {
	f := newIssueFixture(t)
	created := f.createIssue(t, uuid.New())
	voterID := uuid.New()

	_, _, _, err := f.service.ToggleVote(created.ID, voterID, "up")
	require.NoError(t, err)

	outcome, up, down, err := f.service.ToggleVote(created.ID, voterID, "down")
	require.NoError(t, err)
	assert.Equal(t, issue.VoteUpdated, outcome)
	assert.Equal(t, int64(0), up)
	assert.Equal(t, int64(1), down)

	total, err := f.voteRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestVoteRejectsBadType(t *testing.T) {
	f := newIssueFixture(t)
	created := f.createIssue(t, uuid.New())

	_, _, _, err := f.service.ToggleVote(created.ID, uuid.New(), "sideways")
	assert.Error(t, err)
}

func TestVoteOnMissingIssue(t *testing.T) {
	f := newIssueFixture(t)

	_, _, _, err := f.service.ToggleVote(uuid.New(), uuid.New(), "up")
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestChangeStatusWritesAuditAndNotifies(t *testing.T) {
	f := newIssueFixture(t)
	reporterID := uuid.New()
	adminID := uuid.New()
	created := f.createIssue(t, reporterID)

	updated, err := f.service.ChangeStatus(created.ID, adminID, "resolved", "Crew fixed it")
	require.NoError(t, err)
	assert.Equal(t, issue.StatusResolved, updated.Status)
	assert.Equal(t, "Crew fixed it", updated.AdminNotes)

	updates := f.issueRepo.StatusUpdates()
	require.Len(t, updates, 1)
	assert.Equal(t, "open", updates[0].OldValue)
	assert.Equal(t, "resolved", updates[0].NewValue)
	assert.Equal(t, adminID, updates[0].UpdatedBy)

	notifications, _, err := f.notifRepo.ListByUser(reporterID, false, 1, 20)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, notification.TypeIssueStatusUpdate, notifications[0].Type)
	assert.False(t, notifications[0].IsRead)
}

func TestChangeStatusSameStatusSkipsSideEffects(t *testing.T) {
	f := newIssueFixture(t)
	reporterID := uuid.New()
	created := f.createIssue(t, reporterID)

	_, err := f.service.ChangeStatus(created.ID, uuid.New(), "open", "")
	require.NoError(t, err)

	assert.Empty(t, f.issueRepo.StatusUpdates())

	notifications, _, err := f.notifRepo.ListByUser(reporterID, false, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestChangeStatusRejectsBadEnum(t *testing.T) {
	f := newIssueFixture(t)
	created := f.createIssue(t, uuid.New())

	_, err := f.service.ChangeStatus(created.ID, uuid.New(), "fixed", "")
	assert.Error(t, err)

	// Issue stays untouched
	stored, err := f.issueRepo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.StatusOpen, stored.Status)
}

func TestAddCommentNotifiesReporter(t *testing.T) {
	f := newIssueFixture(t)
	reporterID := uuid.New()
	commenterID := uuid.New()
	created := f.createIssue(t, reporterID)

	comment, err := f.service.AddComment(created.ID, commenterID, false, "Same here", nil)
	require.NoError(t, err)
	assert.False(t, comment.IsOfficial)

	notifications, _, err := f.notifRepo.ListByUser(reporterID, true, 1, 20)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, notification.TypeIssueComment, notifications[0].Type)
}

func TestAddCommentByReporterDoesNotSelfNotify(t *testing.T) {
	f := newIssueFixture(t)
	reporterID := uuid.New()
	created := f.createIssue(t, reporterID)

	_, err := f.service.AddComment(created.ID, reporterID, false, "Still broken", nil)
	require.NoError(t, err)

	notifications, _, err := f.notifRepo.ListByUser(reporterID, false, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestAdminCommentIsOfficial(t *testing.T) {
	f := newIssueFixture(t)
	created := f.createIssue(t, uuid.New())

	comment, err := f.service.AddComment(created.ID, uuid.New(), true, "We are on it", nil)
	require.NoError(t, err)
	assert.True(t, comment.IsOfficial)
}

func TestListPaginationTotals(t *testing.T) {
	f := newIssueFixture(t)
	for range 25 {
		f.createIssue(t, uuid.New())
	}

	page1, total, err := f.issueRepo.List(postgres.IssueFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page1, 10)

	page3, total, err := f.issueRepo.List(postgres.IssueFilter{}, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page3, 5)
}
