// Package memstore is the in-memory storage backend, selected by
// configuration for demo and degraded deployments. It honors the same
// contracts as pgstore: one vote row per (request, client) pair and
// cascading deletes. Everything is lost on restart.
package memstore

import (
	"sort"
	"sync"

	"github.com/campusvoice/campusvoice"
)

type voteKey struct {
	requestID string
	clientKey string
}

// A Store keeps the whole board in process memory behind one mutex; every
// operation is atomic, mirroring the single-row statements of the SQL
// backend.
type Store struct {
	mu       sync.Mutex
	requests map[string]campusvoice.Request
	order    []string
	votes    map[voteKey]campusvoice.Vote
	comments map[string][]campusvoice.Comment
}

func New() *Store {
	return &Store{
		requests: map[string]campusvoice.Request{},
		votes:    map[voteKey]campusvoice.Vote{},
		comments: map[string][]campusvoice.Comment{},
	}
}

// Connect is a no-op; there is nothing to connect to.
func (s *Store) Connect() error {
	return nil
}

func (s *Store) CreateRequest(r *campusvoice.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.requests[r.ID] = *r

	return nil
}

func (s *Store) FindRequest(id string) (*campusvoice.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, campusvoice.ErrNotFound
	}

	return &r, nil
}

// DeleteRequest removes the request along with its votes and comments, so
// no orphaned rows survive.
func (s *Store) DeleteRequest(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[id]; !ok {
		return campusvoice.ErrNotFound
	}

	delete(s.requests, id)
	delete(s.comments, id)
	for k := range s.votes {
		if k.requestID == id {
			delete(s.votes, k)
		}
	}

	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

func (s *Store) ApplyVote(requestID string, clientKey string, vote campusvoice.VoteType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[requestID]; !ok {
		return campusvoice.ErrNotFound
	}

	k := voteKey{requestID: requestID, clientKey: clientKey}

	if vote == campusvoice.VoteNone {
		// retracting a vote that doesn't exist is fine
		delete(s.votes, k)
		return nil
	}

	if existing, ok := s.votes[k]; ok {
		existing.VoteType = vote
		s.votes[k] = existing
		return nil
	}

	s.votes[k] = *campusvoice.NewVote(requestID, clientKey, vote)
	return nil
}

func (s *Store) InsertComment(c *campusvoice.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[c.RequestID]; !ok {
		return campusvoice.ErrNotFound
	}

	s.comments[c.RequestID] = append(s.comments[c.RequestID], *c)
	return nil
}

// ListFeed projects every request in insertion order with its vote counts,
// the given client's own vote, and its comments sorted by creation time.
func (s *Store) ListFeed(clientKey string) ([]*campusvoice.ProjectedRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed := []*campusvoice.ProjectedRequest{}
	for _, id := range s.order {
		r := s.requests[id]

		var up, down int64
		userVote := campusvoice.VoteNone
		for k, v := range s.votes {
			if k.requestID != id {
				continue
			}
			switch v.VoteType {
			case campusvoice.VoteUp:
				up++
			case campusvoice.VoteDown:
				down++
			}
			if clientKey != "" && k.clientKey == clientKey {
				userVote = v.VoteType
			}
		}

		comments := make([]campusvoice.ProjectedComment, 0, len(s.comments[id]))
		for _, c := range s.comments[id] {
			comments = append(comments, campusvoice.ProjectedComment{
				ID:        c.ID,
				Text:      c.Content,
				CreatedAt: c.CreatedAt,
			})
		}
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		})

		feed = append(feed, &campusvoice.ProjectedRequest{
			ID:        r.ID,
			Content:   r.Content,
			Category:  r.Category,
			CreatedAt: r.CreatedAt,
			PhotoPath: r.PhotoPath,
			ClientKey: r.OwnerKey,
			Votes:     campusvoice.NewVoteAggregate(up, down, userVote),
			Comments:  comments,
		})
	}

	return feed, nil
}
