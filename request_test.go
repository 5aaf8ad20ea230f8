package campusvoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCategory(t *testing.T) {
	r := require.New(t)

	r.Equal(CategoryAcademic, NormalizeCategory("Academic"))
	r.Equal(CategoryFacilities, NormalizeCategory("Facilities"))
	r.Equal(CategoryOther, NormalizeCategory("Other"))
	r.Equal(CategoryOther, NormalizeCategory(""))
	r.Equal(CategoryOther, NormalizeCategory("academic"))
	r.Equal(CategoryOther, NormalizeCategory("Parking"))
}

func TestNewRequest(t *testing.T) {
	r := require.New(t)

	now, _ := time.Parse(time.RFC3339, "2020-01-01T12:00:00Z")
	nowF := func() time.Time { return now }

	withFakeNow(nowF, func() {
		request := NewRequest("Fix the Wi-Fi", "Facilities", "user_abc", "")
		r.Equal(now, request.CreatedAt)
		r.Equal(CategoryFacilities, request.Category)
		r.Equal("user_abc", request.OwnerKey)
		r.NotEmpty(request.ID)
	})
}

func TestNewRequestUnknownCategory(t *testing.T) {
	r := require.New(t)

	request := NewRequest("Fix the Wi-Fi", "Parking", "user_abc", "")
	r.Equal(CategoryOther, request.Category)
}

func withFakeNow(nowFunc func() time.Time, f func()) {
	old := NowFunc
	NowFunc = nowFunc
	defer func() { NowFunc = old }()
	f()
}
