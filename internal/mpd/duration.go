package mpd

import (
	"strconv"
	"time"

	dash "github.com/zencoder/go-dash/v3/mpd"
)

// SecondsToDuration formats a value in seconds as an ISO-8601
// duration token ("PT7S", "PT2.5S", "PT1M30S").
func SecondsToDuration(seconds float64) string {
	// go-dash renders positive sub-second durations as a raw
	// nanosecond count with a stray control byte.
	if seconds > 0 && seconds < 1 {
		return "PT" + strconv.FormatFloat(seconds, 'f', -1, 64) + "S"
	}

	d := dash.Duration(time.Duration(seconds * float64(time.Second)))

	return d.String()
}
