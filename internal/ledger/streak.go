package ledger

import (
	"math"
	"time"
)

// NextStreak applies the streak rule to a new completion at now.
// Any completion on the same or the following day extends the streak, so
// several activities in one sitting each add one. A longer gap resets it to 1.
func NextStreak(previous int, lastPlayed, now time.Time) int {
	daysDiff := math.Floor(now.Sub(lastPlayed).Hours() / 24)
	if daysDiff <= 1 {
		return previous + 1
	}
	return 1
}
