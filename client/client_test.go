package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/campusvoice/campusvoice"
)

func TestGetOrCreateClientKey(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "client_key")

	key, err := GetOrCreateClientKey(path)
	c.Assert(err, qt.IsNil)
	c.Assert(strings.HasPrefix(key, "user_"), qt.IsTrue)

	again, err := GetOrCreateClientKey(path)
	c.Assert(err, qt.IsNil)
	c.Assert(again, qt.Equals, key)

	info, err := os.Stat(path)
	c.Assert(err, qt.IsNil)
	c.Assert(info.Mode().Perm(), qt.Equals, os.FileMode(0o600))
}

func TestVotePayload(t *testing.T) {
	c := qt.New(t)

	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Assert(r.URL.Path, qt.Equals, "/vote")
		err := json.NewDecoder(r.Body).Decode(&got)
		c.Assert(err, qt.IsNil)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}))
	defer ts.Close()

	api := New(ts.URL, "user_abc")
	err := api.Vote(context.Background(), "req-1", campusvoice.VoteUp)
	c.Assert(err, qt.IsNil)

	c.Assert(got["request_id"], qt.Equals, "req-1")
	c.Assert(got["client_key"], qt.Equals, "user_abc")
	c.Assert(got["vote_type"], qt.Equals, float64(1))
}

func TestDoReportsServerError(t *testing.T) {
	c := qt.New(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "cannot delete someone else's request"}`))
	}))
	defer ts.Close()

	api := New(ts.URL, "user_abc")
	err := api.DeleteRequest(context.Background(), "req-1")
	c.Assert(err, qt.ErrorMatches, `.*cannot delete someone else's request`)
}

func feedServer(c *qt.C, requests []*campusvoice.ProjectedRequest, voteStatus int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/requests":
			err := json.NewEncoder(w).Encode(map[string]any{"requests": requests})
			c.Assert(err, qt.IsNil)
		case "/vote":
			if voteStatus != http.StatusOK {
				w.WriteHeader(voteStatus)
				w.Write([]byte(`{"error": "boom"}`))
				return
			}
			w.Write([]byte(`{"success": true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func projected(id string, up, down int64, userVote campusvoice.VoteType) *campusvoice.ProjectedRequest {
	return &campusvoice.ProjectedRequest{
		ID:        id,
		Content:   "content of " + id,
		Category:  campusvoice.CategoryFacilities,
		CreatedAt: time.Now(),
		Votes:     campusvoice.NewVoteAggregate(up, down, userVote),
		Comments:  []campusvoice.ProjectedComment{},
	}
}

func TestFeedCastVote(t *testing.T) {
	c := qt.New(t)

	ts := feedServer(c, []*campusvoice.ProjectedRequest{projected("req-1", 45, 2, campusvoice.VoteUp)}, http.StatusOK)
	defer ts.Close()

	feed := NewFeed(New(ts.URL, "user_abc"))
	err := feed.Refresh(context.Background())
	c.Assert(err, qt.IsNil)

	err = feed.CastVote(context.Background(), "req-1", campusvoice.VoteDown)
	c.Assert(err, qt.IsNil)

	req, ok := feed.Request("req-1")
	c.Assert(ok, qt.IsTrue)
	c.Assert(req.Votes.Up, qt.Equals, int64(44))
	c.Assert(req.Votes.Down, qt.Equals, int64(3))
	c.Assert(req.Votes.Score, qt.Equals, int64(41))
	c.Assert(req.Votes.UserVote, qt.Equals, campusvoice.VoteDown)
}

func TestFeedCastVoteRollsBack(t *testing.T) {
	c := qt.New(t)

	ts := feedServer(c, []*campusvoice.ProjectedRequest{projected("req-1", 45, 2, campusvoice.VoteUp)}, http.StatusInternalServerError)
	defer ts.Close()

	feed := NewFeed(New(ts.URL, "user_abc"))
	err := feed.Refresh(context.Background())
	c.Assert(err, qt.IsNil)

	before, _ := feed.Request("req-1")
	snapshot := before.Votes

	err = feed.CastVote(context.Background(), "req-1", campusvoice.VoteDown)
	c.Assert(err, qt.IsNotNil)

	after, _ := feed.Request("req-1")
	c.Assert(after.Votes, qt.Equals, snapshot)
}

func TestFeedRequestsSortsACopy(t *testing.T) {
	c := qt.New(t)

	older := projected("req-old", 10, 0, campusvoice.VoteNone)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := projected("req-new", 1, 0, campusvoice.VoteNone)

	ts := feedServer(c, []*campusvoice.ProjectedRequest{older, newer}, http.StatusOK)
	defer ts.Close()

	feed := NewFeed(New(ts.URL, "user_abc"))
	err := feed.Refresh(context.Background())
	c.Assert(err, qt.IsNil)

	byVotes := feed.Requests(campusvoice.CategoryAll, campusvoice.SortVotes)
	c.Assert(byVotes[0].ID, qt.Equals, "req-old")

	byRecent := feed.Requests(campusvoice.CategoryAll, campusvoice.SortRecent)
	c.Assert(byRecent[0].ID, qt.Equals, "req-new")
}
