package campusvoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Categories a request can be filed under. Anything outside this set
// normalizes to CategoryOther so the feed filters stay meaningful.
const (
	CategoryAcademic   = "Academic"
	CategoryFacilities = "Facilities"
	CategoryOther      = "Other"
)

var knownCategories = map[string]bool{
	CategoryAcademic:   true,
	CategoryFacilities: true,
	CategoryOther:      true,
}

// NormalizeCategory maps unset or unknown categories to CategoryOther.
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if knownCategories[category] {
		return category
	}
	return CategoryOther
}

// Request is a single feedback item. It is read-only after creation, except
// for its derived vote aggregate and its comments, and only its owner may
// delete it. OwnerKey is an unverified client token, not an identity.
type Request struct {
	ID        string    `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	Category  string    `db:"category" json:"category"`
	PhotoPath string    `db:"photo_path" json:"photo_path"`
	OwnerKey  string    `db:"owner_key" json:"client_key"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func NewRequest(content string, category string, ownerKey string, photoPath string) *Request {
	return &Request{
		ID:        uuid.NewString(),
		Content:   content,
		Category:  NormalizeCategory(category),
		PhotoPath: photoPath,
		OwnerKey:  ownerKey,
		CreatedAt: NowFunc(),
	}
}
