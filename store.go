package campusvoice

import "errors"

// ErrNotFound is returned by stores when a request does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary. Every implementation honors the same
// contracts: at most one vote row per (request, client) pair, and deleting a
// request cascades to its votes and comments.
type Store interface {
	Connect() error

	CreateRequest(r *Request) error
	FindRequest(id string) (*Request, error)
	// DeleteRequest hard-deletes a request along with its votes and
	// comments. Authorization is the caller's concern.
	DeleteRequest(id string) error

	// ListFeed returns every request joined with its vote counts, the
	// given client's own vote, and its comments. The feed comes back in
	// creation order; callers sort and filter it.
	ListFeed(clientKey string) ([]*ProjectedRequest, error)

	// ApplyVote upserts the (requestID, clientKey) vote row, or deletes it
	// when vote is VoteNone. Repeated identical calls are no-ops; the last
	// call always determines the stored state.
	ApplyVote(requestID string, clientKey string, vote VoteType) error

	InsertComment(c *Comment) error
}
