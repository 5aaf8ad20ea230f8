package campusvoice

import "time"

// NowFunc is the clock used for every timestamp; tests swap it to control
// time.
var NowFunc func() time.Time = time.Now
