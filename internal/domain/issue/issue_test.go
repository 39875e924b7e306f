package issue

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIssueDefaults(t *testing.T) {
	reporterID := uuid.New()
	i := NewIssue("Broken streetlight", "The light on Oak Ave is out", reporterID)

	assert.Equal(t, StatusOpen, i.Status)
	assert.Equal(t, PriorityMedium, i.Priority)
	assert.Equal(t, reporterID, i.ReporterID)
	assert.Equal(t, 0, i.ViewCount)
	assert.NoError(t, i.Validate())
}

func TestIssueValidate(t *testing.T) {
	i := NewIssue("", "desc", uuid.New())
	assert.Error(t, i.Validate())

	i = NewIssue("title", "", uuid.New())
	assert.Error(t, i.Validate())
}

func TestStatusFromString(t *testing.T) {
	cases := map[string]Status{
		"open":        StatusOpen,
		"in_progress": StatusInProgress,
		"resolved":    StatusResolved,
		"closed":      StatusClosed,
	}
	for input, want := range cases {
		got, ok := StatusFromString(input)
		require.True(t, ok, "expected %q to parse", input)
		assert.Equal(t, want, got)
		assert.Equal(t, input, got.String())
	}

	_, ok := StatusFromString("archived")
	assert.False(t, ok)
}

func TestPriorityFromString(t *testing.T) {
	cases := map[string]Priority{
		"low":    PriorityLow,
		"medium": PriorityMedium,
		"high":   PriorityHigh,
		"urgent": PriorityUrgent,
	}
	for input, want := range cases {
		got, ok := PriorityFromString(input)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := PriorityFromString("critical")
	assert.False(t, ok)
}

func TestStatusJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, `"in_progress"`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"resolved"`), &s))
	assert.Equal(t, StatusResolved, s)

	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &s))
}

func TestVoteTypeFromString(t *testing.T) {
	up, ok := VoteTypeFromString("up")
	require.True(t, ok)
	assert.Equal(t, VoteUp, up)

	down, ok := VoteTypeFromString("down")
	require.True(t, ok)
	assert.Equal(t, VoteDown, down)

	_, ok = VoteTypeFromString("sideways")
	assert.False(t, ok)
}

func TestNewStatusUpdateMessage(t *testing.T) {
	issueID := uuid.New()
	actorID := uuid.New()

	u := NewStatusUpdate(issueID, actorID, StatusOpen, StatusResolved)

	assert.Equal(t, issueID, u.IssueID)
	assert.Equal(t, actorID, u.UpdatedBy)
	assert.Equal(t, "status_change", u.UpdateType)
	assert.Equal(t, "open", u.OldValue)
	assert.Equal(t, "resolved", u.NewValue)
	assert.Equal(t, "Status changed from open to resolved", u.Message)
}

func TestNewComment(t *testing.T) {
	issueID := uuid.New()
	userID := uuid.New()

	c := NewComment(issueID, userID, "Any update on this?", false)
	assert.Equal(t, issueID, c.IssueID)
	assert.False(t, c.IsOfficial)
	assert.NoError(t, c.Validate())

	official := NewComment(issueID, userID, "Crew dispatched.", true)
	assert.True(t, official.IsOfficial)
}
