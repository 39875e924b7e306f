package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
)

type voteKey struct {
	issueID uuid.UUID
	userID  uuid.UUID
}

// InMemoryVoteRepository implements postgres.VoteRepository
type InMemoryVoteRepository struct {
	mu    sync.Mutex
	votes map[voteKey]*issue.Vote
}

// NewInMemoryVoteRepository creates an empty vote repository
func NewInMemoryVoteRepository() *InMemoryVoteRepository {
	return &InMemoryVoteRepository{
		votes: make(map[voteKey]*issue.Vote),
	}
}

// Toggle applies the same state machine as the PostgreSQL repository:
// no vote creates one, the same type removes it, the other type flips it.
func (r *InMemoryVoteRepository) Toggle(issueID, userID uuid.UUID, voteType issue.VoteType) (issue.VoteOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := voteKey{issueID: issueID, userID: userID}
	existing, ok := r.votes[key]

	switch {
	case !ok:
		r.votes[key] = issue.NewVote(issueID, userID, voteType)
		return issue.VoteCreated, nil
	case existing.VoteType == voteType:
		delete(r.votes, key)
		return issue.VoteRemoved, nil
	default:
		existing.VoteType = voteType
		existing.UpdatedAt = time.Now()
		return issue.VoteUpdated, nil
	}
}

func (r *InMemoryVoteRepository) GetByIssueAndUser(issueID, userID uuid.UUID) (*issue.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.votes[voteKey{issueID: issueID, userID: userID}]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *InMemoryVoteRepository) CountByIssue(issueID uuid.UUID) (up, down int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, stored := range r.votes {
		if key.issueID != issueID {
			continue
		}
		if stored.VoteType == issue.VoteUp {
			up++
		} else {
			down++
		}
	}
	return up, down, nil
}

func (r *InMemoryVoteRepository) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.votes)), nil
}

func (r *InMemoryVoteRepository) CountByUser(userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for key := range r.votes {
		if key.userID == userID {
			count++
		}
	}
	return count, nil
}
