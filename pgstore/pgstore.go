package pgstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/campusvoice/campusvoice"
)

// A PGStore is responsible for interacting with the storage layer using a
// PostgreSQL database.
type PGStore struct {
	dbString string
	db       *sqlx.DB
}

// New returns a PGStore configured for a given address string, using the
// "user=postgres dbname=campusvoice ..." format.
func New(addr string) *PGStore {
	return &PGStore{
		dbString: addr,
	}
}

// Connect establishes a connection with the database using the address
// given at initialization.
func (s *PGStore) Connect() error {
	db, err := sqlx.Connect("postgres", s.dbString)
	if err != nil {
		return err
	}

	s.db = db

	return nil
}

// DB returns the existing connection, making it suitable to perform
// requests not already supported by the store interface. If called while
// not connected, it will return nil.
func (s *PGStore) DB() *sqlx.DB {
	return s.db
}

// EnsureSchema creates the tables when missing. The UNIQUE constraint on
// (request_id, client_key) is what ApplyVote's upsert conflicts against.
func (s *PGStore) EnsureSchema() error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'Other',
	photo_path TEXT NOT NULL DEFAULT '',
	owner_key TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS votes (
	id TEXT PRIMARY KEY,
	request_id TEXT NOT NULL REFERENCES requests (id) ON DELETE CASCADE,
	client_key TEXT NOT NULL,
	vote_type SMALLINT NOT NULL CHECK (vote_type IN (1, -1)),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (request_id, client_key)
);

CREATE TABLE IF NOT EXISTS comments (
	id TEXT PRIMARY KEY,
	request_id TEXT NOT NULL REFERENCES requests (id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *PGStore) CreateRequest(r *campusvoice.Request) error {
	_, err := s.db.Exec(
		"INSERT INTO requests (id, content, category, photo_path, owner_key, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		r.ID, r.Content, r.Category, r.PhotoPath, r.OwnerKey, r.CreatedAt,
	)
	return err
}

func (s *PGStore) FindRequest(id string) (*campusvoice.Request, error) {
	request := campusvoice.Request{}
	err := s.db.Get(&request, "SELECT * FROM requests WHERE id=$1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, campusvoice.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &request, nil
}

// DeleteRequest removes the request and, in the same transaction, its votes
// and comments. The foreign keys also cascade, but the contract lives here,
// not in a schema detail.
func (s *PGStore) DeleteRequest(id string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM votes WHERE request_id=$1", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM comments WHERE request_id=$1", id); err != nil {
		return err
	}

	result, err := tx.Exec("DELETE FROM requests WHERE id=$1", id)
	if err != nil {
		return err
	}
	count, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return campusvoice.ErrNotFound
	}

	return tx.Commit()
}

// ApplyVote upserts the caller's vote row, conflicting on the
// (request_id, client_key) unique key so the last call always wins, or
// deletes the row for a retract. Retracting a missing vote is not an error.
func (s *PGStore) ApplyVote(requestID string, clientKey string, vote campusvoice.VoteType) error {
	if vote == campusvoice.VoteNone {
		_, err := s.db.Exec("DELETE FROM votes WHERE request_id=$1 AND client_key=$2", requestID, clientKey)
		return err
	}

	_, err := s.db.Exec(
		`INSERT INTO votes (id, request_id, client_key, vote_type, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (request_id, client_key) DO UPDATE SET vote_type = EXCLUDED.vote_type`,
		uuid.NewString(), requestID, clientKey, vote, campusvoice.NowFunc(),
	)
	return err
}

func (s *PGStore) InsertComment(c *campusvoice.Comment) error {
	_, err := s.db.Exec(
		"INSERT INTO comments (id, request_id, content, created_at) VALUES ($1, $2, $3, $4)",
		c.ID, c.RequestID, c.Content, c.CreatedAt,
	)
	return err
}

// feedRow carries a request with its aggregated vote counts.
type feedRow struct {
	campusvoice.Request
	Upvotes   int64 `db:"upvotes"`
	Downvotes int64 `db:"downvotes"`
}

type userVoteRow struct {
	RequestID string               `db:"request_id"`
	VoteType  campusvoice.VoteType `db:"vote_type"`
}

// ListFeed joins requests with their vote counts, the given client's own
// votes, and all comments, returned in creation order.
func (s *PGStore) ListFeed(clientKey string) ([]*campusvoice.ProjectedRequest, error) {
	rows := []*feedRow{}
	err := s.db.Select(&rows, `
		SELECT requests.*,
			COUNT(votes.id) FILTER (WHERE votes.vote_type = 1) AS upvotes,
			COUNT(votes.id) FILTER (WHERE votes.vote_type = -1) AS downvotes
		FROM requests
		LEFT JOIN votes ON votes.request_id = requests.id
		GROUP BY requests.id
		ORDER BY requests.created_at ASC`)
	if err != nil {
		return nil, err
	}

	userVotes := map[string]campusvoice.VoteType{}
	if clientKey != "" {
		vv := []userVoteRow{}
		err := s.db.Select(&vv, "SELECT request_id, vote_type FROM votes WHERE client_key=$1", clientKey)
		if err != nil {
			return nil, err
		}
		for _, v := range vv {
			userVotes[v.RequestID] = v.VoteType
		}
	}

	comments := []*campusvoice.Comment{}
	err = s.db.Select(&comments, "SELECT * FROM comments ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	commentsByRequest := map[string][]campusvoice.ProjectedComment{}
	for _, c := range comments {
		commentsByRequest[c.RequestID] = append(commentsByRequest[c.RequestID], campusvoice.ProjectedComment{
			ID:        c.ID,
			Text:      c.Content,
			CreatedAt: c.CreatedAt,
		})
	}

	feed := []*campusvoice.ProjectedRequest{}
	for _, row := range rows {
		cc := commentsByRequest[row.ID]
		if cc == nil {
			cc = []campusvoice.ProjectedComment{}
		}

		feed = append(feed, &campusvoice.ProjectedRequest{
			ID:        row.ID,
			Content:   row.Content,
			Category:  row.Category,
			CreatedAt: row.CreatedAt,
			PhotoPath: row.PhotoPath,
			ClientKey: row.OwnerKey,
			Votes:     campusvoice.NewVoteAggregate(row.Upvotes, row.Downvotes, userVotes[row.ID]),
			Comments:  cc,
		})
	}

	return feed, nil
}
