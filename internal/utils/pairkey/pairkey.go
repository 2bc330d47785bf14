package pairkey

import "fmt"

// Key returns the deterministic identifier for the unordered user pair
// {a,b}: "<lo>:<hi>". It is the primary key of the match registry and the
// idempotency/locking key for match creation across both channels.
func Key(a, b uint64) string {
	lo, hi := Ordered(a, b)
	return fmt.Sprintf("%d:%d", lo, hi)
}

// Ordered returns the pair sorted ascending.
func Ordered(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}
