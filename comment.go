package campusvoice

import (
	"time"

	"github.com/google/uuid"
)

// Comment is an append-only note on a request. Comments have no author
// record and cannot be edited or deleted; they are listed in creation order.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	RequestID string    `db:"request_id" json:"request_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func NewComment(requestID string, content string) *Comment {
	return &Comment{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Content:   content,
		CreatedAt: NowFunc(),
	}
}
