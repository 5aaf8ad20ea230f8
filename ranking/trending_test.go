package ranking

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

type testItem struct {
	score int64
	age   time.Time
}

func (i *testItem) GetScore() int64 {
	return i.score
}

func (i *testItem) Age() time.Time {
	return i.age
}

func TestRank(t *testing.T) {
	c := qt.New(t)

	age, _ := time.Parse(time.RFC3339, "2024-03-06T18:00:00Z")
	ref, _ := time.Parse(time.RFC3339, "2024-03-06T22:00:00Z")

	items := []*testItem{
		{score: 10, age: age},
		{score: 5, age: age.Add(-1 * 2 * time.Hour)},
		{score: 20, age: age.Add(-1 * 48 * time.Hour)},
	}

	ranks := make([]float64, len(items))

	for i, item := range items {
		ranks[i] = Rank(item, 1.8, 24, ref)
	}

	c.Assert(ranks[0] > ranks[1], qt.IsTrue, qt.Commentf("item 0 (rank=%f) should be ranked higher than item 1 (rank=%f)", ranks[0], ranks[1]))
	c.Assert(ranks[0] > ranks[2], qt.IsTrue, qt.Commentf("item 0 (rank=%f) should be ranked higher than item 2 (rank=%f)", ranks[0], ranks[2]))
}

func TestRankDecays(t *testing.T) {
	c := qt.New(t)

	ref, _ := time.Parse(time.RFC3339, "2024-03-06T22:00:00Z")

	fresh := &testItem{score: 8, age: ref.Add(-1 * time.Hour)}
	stale := &testItem{score: 8, age: ref.Add(-72 * time.Hour)}

	c.Assert(Rank(fresh, 1.8, 24, ref) > Rank(stale, 1.8, 24, ref), qt.IsTrue,
		qt.Commentf("equal scores must rank by freshness"))
}
