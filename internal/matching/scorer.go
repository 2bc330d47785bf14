// Package matching holds the pure domain logic of the engine: the
// compatibility scorer and the candidate ranker. Nothing in here touches
// persistence.
package matching

import (
	"math"
	"strings"

	"github.com/campusmatch/matchengine/internal/db"
)

// Category weights. The denominator is fixed at 100 under PolicyStrict,
// so two sparsely-filled profiles cannot reach a full score.
const (
	weightCampus    = 25
	weightCourse    = 20
	weightDeptOnly  = 15
	weightYear      = 15
	weightInterests = 20
	weightHabits    = 10
	weightClubs     = 10
)

// Policy selects the scoring denominator.
type Policy int

const (
	// PolicyStrict divides by the full 100 points regardless of which
	// categories are populated.
	PolicyStrict Policy = iota
	// PolicyRenormalized divides by the summed weights of categories
	// populated on both profiles.
	PolicyRenormalized
)

// PolicyFromString parses a config value; anything unrecognized falls back
// to strict.
func PolicyFromString(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), "renormalized") {
		return PolicyRenormalized
	}
	return PolicyStrict
}

// Scorer computes a deterministic compatibility score for an ordered pair
// of profiles. It is stateless and never errors: missing data degrades the
// score instead.
type Scorer struct {
	policy Policy
}

func NewScorer(policy Policy) *Scorer {
	return &Scorer{policy: policy}
}

// Score returns an integer in [0,100]. A category counts only when both
// profiles carry the field; otherwise it contributes zero.
func (s *Scorer) Score(self, candidate *db.Profile) int {
	var pts, applicable float64

	// Campus: all or nothing.
	if self.Campus != "" && candidate.Campus != "" {
		applicable += weightCampus
		if self.Campus == candidate.Campus {
			pts += weightCampus
		}
	}

	// Course, with department as partial credit. Department alone never
	// scores: the category opens only when both courses are known.
	if self.Course != "" && candidate.Course != "" {
		applicable += weightCourse
		switch {
		case self.Course == candidate.Course:
			pts += weightCourse
		case self.Department != "" && self.Department == candidate.Department:
			pts += weightDeptOnly
		}
	}

	// Year of study: decays with distance.
	if self.YearOfStudy > 0 && candidate.YearOfStudy > 0 {
		applicable += weightYear
		diff := self.YearOfStudy - candidate.YearOfStudy
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 0:
			pts += weightYear
		case 1:
			pts += 10
		case 2:
			pts += 5
		}
	}

	for _, cat := range []struct {
		a, b   []string
		weight float64
	}{
		{self.Interests, candidate.Interests, weightInterests},
		{self.StudyHabits, candidate.StudyHabits, weightHabits},
		{self.Extracurriculars, candidate.Extracurriculars, weightClubs},
	} {
		if p, ok := overlapPoints(cat.a, cat.b, cat.weight); ok {
			applicable += cat.weight
			pts += p
		}
	}

	denom := 100.0
	if s.policy == PolicyRenormalized {
		if applicable == 0 {
			return 0
		}
		denom = applicable
	}
	return int(math.Round(pts / denom * 100))
}

// overlapPoints scores a tag category proportionally: weight × |A∩B| /
// max(|A|,|B|). ok is false when either side carries no tags.
func overlapPoints(a, b []string, weight float64) (float64, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}

	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}

	common := 0
	seen := make(map[string]struct{}, len(b))
	for _, tag := range b {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := set[tag]; ok {
			common++
		}
	}

	denom := len(set)
	if len(seen) > denom {
		denom = len(seen)
	}
	return weight * float64(common) / float64(denom), true
}
