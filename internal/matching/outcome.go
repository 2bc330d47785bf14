package matching

import "github.com/campusmatch/matchengine/internal/db"

// Outcome reports the result of recording an outgoing interest on either
// channel: the interest was stored, and Matched says whether a reciprocal
// interest promoted the pair. Match carries the canonical registry row,
// freshly created or pre-existing; the caller cannot tell the difference
// and does not need to.
type Outcome struct {
	Matched bool
	Match   *db.Match
}
