package ranking

import (
	"math"
	"time"
)

// Rankable is anything with a score and a creation time.
type Rankable interface {
	GetScore() int64
	Age() time.Time
}

// Rank computes a time-decayed popularity value: the raw score divided by a
// power of the item's age in hours. A higher gravity buries old items
// faster; timebaseInHours dampens the decay for very young items.
func Rank(item Rankable, gravity float64, timebaseInHours int64, referenceTime time.Time) float64 {
	hours := referenceTime.Sub(item.Age()).Hours()
	s := item.GetScore()

	return float64(s-1) / math.Pow((float64(timebaseInHours)+hours), gravity)
}
