package mailview

import (
	"fmt"
	"time"
)

// remainingTTL returns the number of seconds the token's authorization is
// still good for at the given instant. It can be zero or negative: the
// token is checked for expiry during verification, but time passes between
// verification and response construction.
func remainingTTL(expiresAt int64, now time.Time) int64 {
	return expiresAt - now.Unix()
}

// cacheControl renders the cache-control directive for a response whose
// token has ttl seconds left. max-age and s-maxage carry the same value.
func cacheControl(ttl int64) string {
	if ttl <= 0 {
		return "no-store"
	}
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d", ttl, ttl)
}
