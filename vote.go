package campusvoice

import (
	"time"

	"github.com/google/uuid"
)

// VoteType encodes a vote direction on the wire and in storage. VoteNone is
// a retract intent; it deletes the vote row and is never stored itself.
type VoteType int

const (
	VoteNone VoteType = 0
	VoteUp   VoteType = 1
	VoteDown VoteType = -1
)

func (v VoteType) Valid() bool {
	return v == VoteNone || v == VoteUp || v == VoteDown
}

// Vote is one client's vote on one request. At most one row exists per
// (RequestID, ClientKey) pair, which is what makes ApplyVote last-write-wins.
type Vote struct {
	ID        string    `db:"id"`
	RequestID string    `db:"request_id"`
	ClientKey string    `db:"client_key"`
	VoteType  VoteType  `db:"vote_type"`
	CreatedAt time.Time `db:"created_at"`
}

func NewVote(requestID string, clientKey string, voteType VoteType) *Vote {
	return &Vote{
		ID:        uuid.NewString(),
		RequestID: requestID,
		ClientKey: clientKey,
		VoteType:  voteType,
		CreatedAt: NowFunc(),
	}
}

// VoteAggregate is the derived tally for a request plus the asking client's
// own vote state. Score is always Up - Down; it is recomputed from the
// counts, never mutated independently.
type VoteAggregate struct {
	Up       int64    `json:"up"`
	Down     int64    `json:"down"`
	Score    int64    `json:"score"`
	UserVote VoteType `json:"userVote"`
}

func NewVoteAggregate(up int64, down int64, userVote VoteType) VoteAggregate {
	a := VoteAggregate{Up: up, Down: down, UserVote: userVote}
	a.settle()
	return a
}

// ApplyVote performs the local vote transition: repeating the current
// direction retracts the vote, a different direction switches it, and a vote
// from the none state casts a new one. It returns the resulting vote state,
// which is exactly what must be sent to the server (VoteNone for a retract).
func (a *VoteAggregate) ApplyVote(direction VoteType) VoteType {
	switch {
	case direction == a.UserVote:
		a.count(direction, -1)
		a.UserVote = VoteNone
	case a.UserVote == VoteNone:
		a.count(direction, 1)
		a.UserVote = direction
	default:
		a.count(a.UserVote, -1)
		a.count(direction, 1)
		a.UserVote = direction
	}
	a.settle()
	return a.UserVote
}

func (a *VoteAggregate) count(direction VoteType, delta int64) {
	switch direction {
	case VoteUp:
		a.Up += delta
	case VoteDown:
		a.Down += delta
	}
}

// settle clamps the counts at zero and recomputes the score. Well-formed
// transitions never go negative; the clamp guards against malformed input.
func (a *VoteAggregate) settle() {
	if a.Up < 0 {
		a.Up = 0
	}
	if a.Down < 0 {
		a.Down = 0
	}
	a.Score = a.Up - a.Down
}
