package pgstore

import (
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/campusvoice/campusvoice"
)

// testStore connects to the database named by CAMPUSVOICE_TEST_DB and wipes
// it. Tests are skipped when the variable is unset.
func testStore(t *testing.T) *PGStore {
	t.Helper()

	addr := os.Getenv("CAMPUSVOICE_TEST_DB")
	if addr == "" {
		t.Skip("CAMPUSVOICE_TEST_DB not set, skipping database tests")
	}

	store := New(addr)
	err := store.Connect()
	if err != nil {
		t.Fatal(err)
	}
	err = store.EnsureSchema()
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.DB().Exec("TRUNCATE requests, votes, comments")
	if err != nil {
		t.Fatal(err)
	}

	return store
}

func TestRequestLifecycle(t *testing.T) {
	c := qt.New(t)
	store := testStore(t)

	req := campusvoice.NewRequest("The library needs more power outlets", campusvoice.CategoryFacilities, "user_a", "")
	err := store.CreateRequest(req)
	c.Assert(err, qt.IsNil)

	found, err := store.FindRequest(req.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(found.Content, qt.Equals, req.Content)
	c.Assert(found.Category, qt.Equals, campusvoice.CategoryFacilities)
	c.Assert(found.OwnerKey, qt.Equals, "user_a")

	_, err = store.FindRequest("nope")
	c.Assert(err, qt.Equals, campusvoice.ErrNotFound)

	err = store.DeleteRequest(req.ID)
	c.Assert(err, qt.IsNil)

	_, err = store.FindRequest(req.ID)
	c.Assert(err, qt.Equals, campusvoice.ErrNotFound)

	err = store.DeleteRequest(req.ID)
	c.Assert(err, qt.Equals, campusvoice.ErrNotFound)
}

func TestApplyVoteUpsert(t *testing.T) {
	c := qt.New(t)
	store := testStore(t)

	req := campusvoice.NewRequest("Extend cafeteria hours", campusvoice.CategoryAcademic, "user_a", "")
	err := store.CreateRequest(req)
	c.Assert(err, qt.IsNil)

	votesFor := func(clientKey string) campusvoice.VoteAggregate {
		feed, err := store.ListFeed(clientKey)
		c.Assert(err, qt.IsNil)
		c.Assert(feed, qt.HasLen, 1)
		return feed[0].Votes
	}

	c.Run("a new vote creates a row", func(c *qt.C) {
		err := store.ApplyVote(req.ID, "user_b", campusvoice.VoteUp)
		c.Assert(err, qt.IsNil)

		agg := votesFor("user_b")
		c.Assert(agg.Up, qt.Equals, int64(1))
		c.Assert(agg.Down, qt.Equals, int64(0))
		c.Assert(agg.UserVote, qt.Equals, campusvoice.VoteUp)
	})

	c.Run("a repeated vote overwrites, never accumulates", func(c *qt.C) {
		err := store.ApplyVote(req.ID, "user_b", campusvoice.VoteUp)
		c.Assert(err, qt.IsNil)
		err = store.ApplyVote(req.ID, "user_b", campusvoice.VoteDown)
		c.Assert(err, qt.IsNil)

		agg := votesFor("user_b")
		c.Assert(agg.Up, qt.Equals, int64(0))
		c.Assert(agg.Down, qt.Equals, int64(1))
		c.Assert(agg.UserVote, qt.Equals, campusvoice.VoteDown)
	})

	c.Run("a retract deletes the row", func(c *qt.C) {
		err := store.ApplyVote(req.ID, "user_b", campusvoice.VoteNone)
		c.Assert(err, qt.IsNil)

		agg := votesFor("user_b")
		c.Assert(agg.Up, qt.Equals, int64(0))
		c.Assert(agg.Down, qt.Equals, int64(0))
		c.Assert(agg.UserVote, qt.Equals, campusvoice.VoteNone)
	})

	c.Run("retracting twice is a no-op", func(c *qt.C) {
		err := store.ApplyVote(req.ID, "user_b", campusvoice.VoteNone)
		c.Assert(err, qt.IsNil)
	})
}

func TestListFeed(t *testing.T) {
	c := qt.New(t)
	store := testStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	campusvoice.NowFunc = func() time.Time { return now }
	defer func() { campusvoice.NowFunc = time.Now }()

	first := campusvoice.NewRequest("Fix the Wi-Fi in the dorms", campusvoice.CategoryFacilities, "user_a", "")
	err := store.CreateRequest(first)
	c.Assert(err, qt.IsNil)

	campusvoice.NowFunc = func() time.Time { return now.Add(time.Minute) }
	second := campusvoice.NewRequest("Publish exam schedules earlier", campusvoice.CategoryAcademic, "user_b", "")
	err = store.CreateRequest(second)
	c.Assert(err, qt.IsNil)

	err = store.ApplyVote(first.ID, "user_a", campusvoice.VoteUp)
	c.Assert(err, qt.IsNil)
	err = store.ApplyVote(first.ID, "user_b", campusvoice.VoteUp)
	c.Assert(err, qt.IsNil)
	err = store.ApplyVote(first.ID, "user_c", campusvoice.VoteDown)
	c.Assert(err, qt.IsNil)

	comment := campusvoice.NewComment(first.ID, "Same in the east wing")
	err = store.InsertComment(comment)
	c.Assert(err, qt.IsNil)

	feed, err := store.ListFeed("user_c")
	c.Assert(err, qt.IsNil)
	c.Assert(feed, qt.HasLen, 2)

	c.Assert(feed[0].ID, qt.Equals, first.ID)
	c.Assert(feed[1].ID, qt.Equals, second.ID)

	c.Assert(feed[0].Votes.Up, qt.Equals, int64(2))
	c.Assert(feed[0].Votes.Down, qt.Equals, int64(1))
	c.Assert(feed[0].Votes.Score, qt.Equals, int64(1))
	c.Assert(feed[0].Votes.UserVote, qt.Equals, campusvoice.VoteDown)
	c.Assert(feed[1].Votes.UserVote, qt.Equals, campusvoice.VoteNone)

	c.Assert(feed[0].Comments, qt.HasLen, 1)
	c.Assert(feed[0].Comments[0].Text, qt.Equals, "Same in the east wing")
	c.Assert(feed[1].Comments, qt.HasLen, 0)
	c.Assert(feed[1].Comments, qt.Not(qt.IsNil))
}

func TestDeleteRequestCascades(t *testing.T) {
	c := qt.New(t)
	store := testStore(t)

	req := campusvoice.NewRequest("More bike racks near the gym", campusvoice.CategoryFacilities, "user_a", "")
	err := store.CreateRequest(req)
	c.Assert(err, qt.IsNil)

	err = store.ApplyVote(req.ID, "user_b", campusvoice.VoteUp)
	c.Assert(err, qt.IsNil)
	err = store.InsertComment(campusvoice.NewComment(req.ID, "Yes please"))
	c.Assert(err, qt.IsNil)

	err = store.DeleteRequest(req.ID)
	c.Assert(err, qt.IsNil)

	var count int
	err = store.DB().Get(&count, "SELECT COUNT(*) FROM votes WHERE request_id=$1", req.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, 0)

	err = store.DB().Get(&count, "SELECT COUNT(*) FROM comments WHERE request_id=$1", req.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, 0)
}
