package campusvoice

import (
	"html/template"
	"sort"
	"time"

	"github.com/campusvoice/campusvoice/ranking"
)

// SortKey selects the feed ordering.
type SortKey string

const (
	SortRecent   SortKey = "recent"
	SortVotes    SortKey = "votes"
	SortTrending SortKey = "trending"
)

// Trending parameters: score decays over roughly a day, old requests sink
// fast enough that the board stays fresh between semesters.
const (
	trendingGravity  = 1.8
	trendingTimebase = 24
)

// CategoryAll is the filter value that keeps every request.
const CategoryAll = "all"

// ProjectedComment is the wire shape of a comment inside the feed.
type ProjectedComment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectedRequest joins a request with its vote aggregate and its comments,
// as served to clients. It is a read-only view; mutating it changes nothing
// persisted.
type ProjectedRequest struct {
	ID          string             `json:"id"`
	Content     string             `json:"content"`
	ContentHTML template.HTML      `json:"content_html"`
	Category    string             `json:"category"`
	CreatedAt   time.Time          `json:"created_at"`
	PhotoPath   string             `json:"photo_path"`
	ClientKey   string             `json:"client_key"`
	Votes       VoteAggregate      `json:"votes"`
	Comments    []ProjectedComment `json:"comments"`
}

// GetScore makes the projection rankable for the trending sort.
func (p *ProjectedRequest) GetScore() int64 { return p.Votes.Score }

func (p *ProjectedRequest) Age() time.Time { return p.CreatedAt }

// FilterByCategory keeps the requests whose category matches exactly. An
// empty category or CategoryAll keeps the whole feed, in the same order.
func FilterByCategory(feed []*ProjectedRequest, category string) []*ProjectedRequest {
	if category == "" || category == CategoryAll {
		return feed
	}

	kept := []*ProjectedRequest{}
	for _, p := range feed {
		if p.Category == category {
			kept = append(kept, p)
		}
	}
	return kept
}

// SortFeed orders the feed in place. The sort is stable so requests with
// equal keys keep their relative input order.
func SortFeed(feed []*ProjectedRequest, key SortKey) {
	switch key {
	case SortVotes:
		sort.SliceStable(feed, func(i, j int) bool {
			return feed[i].Votes.Score > feed[j].Votes.Score
		})
	case SortTrending:
		now := NowFunc()
		sort.SliceStable(feed, func(i, j int) bool {
			return ranking.Rank(feed[i], trendingGravity, trendingTimebase, now) >
				ranking.Rank(feed[j], trendingGravity, trendingTimebase, now)
		})
	default:
		sort.SliceStable(feed, func(i, j int) bool {
			return feed[i].CreatedAt.After(feed[j].CreatedAt)
		})
	}
}
