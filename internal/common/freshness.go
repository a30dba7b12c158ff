package common

import "time"

// FreshnessListings is how long a listing search result is reused.
const FreshnessListings = 30 * time.Minute

// IsFresh returns true if updated is within ttl of now
func IsFresh(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() || ttl <= 0 {
		return false
	}
	return now.Sub(updated) < ttl
}
