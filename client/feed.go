package client

import (
	"context"
	"fmt"

	"github.com/campusvoice/campusvoice"
)

// A Feed is the client-side view of the board. Vote transitions are applied
// to the local copy before the server call, so the UI reads its own write
// immediately, and restored from a snapshot when the call fails.
type Feed struct {
	api      *Client
	requests []*campusvoice.ProjectedRequest
	byID     map[string]*campusvoice.ProjectedRequest
}

func NewFeed(api *Client) *Feed {
	return &Feed{
		api:  api,
		byID: map[string]*campusvoice.ProjectedRequest{},
	}
}

// Refresh replaces the local state with the server's, dropping any
// optimistic edits.
func (f *Feed) Refresh(ctx context.Context) error {
	requests, err := f.api.FetchFeed(ctx)
	if err != nil {
		return err
	}

	f.requests = requests
	f.byID = map[string]*campusvoice.ProjectedRequest{}
	for _, r := range requests {
		f.byID[r.ID] = r
	}

	return nil
}

// Requests returns the local feed filtered and sorted. The underlying
// slice is never reordered, every call sorts a fresh copy.
func (f *Feed) Requests(category string, key campusvoice.SortKey) []*campusvoice.ProjectedRequest {
	view := campusvoice.FilterByCategory(f.requests, category)
	out := make([]*campusvoice.ProjectedRequest, len(view))
	copy(out, view)
	campusvoice.SortFeed(out, key)
	return out
}

// Request returns the local copy of one request.
func (f *Feed) Request(id string) (*campusvoice.ProjectedRequest, bool) {
	r, ok := f.byID[id]
	return r, ok
}

// CastVote applies the vote transition locally, then tells the server. If
// the server call fails the local tally is restored exactly to its prior
// state and the error is returned.
func (f *Feed) CastVote(ctx context.Context, requestID string, direction campusvoice.VoteType) error {
	req, ok := f.byID[requestID]
	if !ok {
		return fmt.Errorf("unknown request %q", requestID)
	}

	snapshot := req.Votes
	sent := req.Votes.ApplyVote(direction)

	if err := f.api.Vote(ctx, requestID, sent); err != nil {
		req.Votes = snapshot
		return fmt.Errorf("cast vote: %w", err)
	}

	return nil
}

// AddComment sends the comment and appends the stored copy to the local
// request. Comments are not optimistic, the server assigns id and time.
func (f *Feed) AddComment(ctx context.Context, requestID string, content string) error {
	req, ok := f.byID[requestID]
	if !ok {
		return fmt.Errorf("unknown request %q", requestID)
	}

	comment, err := f.api.Comment(ctx, requestID, content)
	if err != nil {
		return err
	}

	req.Comments = append(req.Comments, campusvoice.ProjectedComment{
		ID:        comment.ID,
		Text:      comment.Content,
		CreatedAt: comment.CreatedAt,
	})

	return nil
}
