package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/campusmatch/matchengine/internal/db"
	apperrors "github.com/campusmatch/matchengine/internal/errors"
)

// ProfileSource is the slice of the profile store the ranker needs.
type ProfileSource interface {
	ListProfiles(ctx context.Context, excluding []uint64, limit int) ([]db.Profile, error)
}

// RankedCandidate pairs a candidate profile with its compatibility score.
type RankedCandidate struct {
	Profile db.Profile
	Score   int
}

// Ranker fetches a bounded candidate superset, scores it and returns the
// top N. It holds no state between calls; every call re-reads the store.
type Ranker struct {
	profiles   ProfileSource
	scorer     *Scorer
	fetchLimit int
}

func NewRanker(profiles ProfileSource, scorer *Scorer, fetchLimit int) *Ranker {
	if fetchLimit <= 0 {
		fetchLimit = 50
	}
	return &Ranker{profiles: profiles, scorer: scorer, fetchLimit: fetchLimit}
}

// Rank returns up to limit candidates ordered by score descending, ties
// broken by ascending candidate ID so pagination stays deterministic.
// exclude lists candidates the user already acted on; self is always
// excluded. Store failures surface as ErrFetchFailed.
func (r *Ranker) Rank(ctx context.Context, self *db.Profile, exclude map[uint64]struct{}, limit int) ([]RankedCandidate, error) {
	excluding := make([]uint64, 0, len(exclude)+1)
	excluding = append(excluding, self.ID)
	for id := range exclude {
		if id != self.ID {
			excluding = append(excluding, id)
		}
	}

	candidates, err := r.profiles.ListProfiles(ctx, excluding, r.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing candidates: %v", apperrors.ErrFetchFailed, err)
	}

	return r.Top(self, candidates, limit), nil
}

// Top scores an already-fetched candidate set against self and returns the
// best limit entries, same ordering contract as Rank.
func (r *Ranker) Top(self *db.Profile, candidates []db.Profile, limit int) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for i := range candidates {
		ranked = append(ranked, RankedCandidate{
			Profile: candidates[i],
			Score:   r.scorer.Score(self, &candidates[i]),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Profile.ID < ranked[j].Profile.ID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
