// Package discover implements candidate ranking: who should a user see
// next, ordered by compatibility.
package discover

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/campusmatch/matchengine/internal/app"
	apperrors "github.com/campusmatch/matchengine/internal/errors"
	"github.com/campusmatch/matchengine/internal/matching"
	"github.com/campusmatch/matchengine/internal/repository"
)

const defaultLimit = 10

// Service wires the scorer and ranker to the profile store and the
// direct-channel ledger.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	actionRepo  *repository.ActionRepository
	ranker      *matching.Ranker
	fetchLimit  int
}

// NewService creates the discover service with dependencies from
// AppContext. The scoring policy and candidate fetch bound come from
// config.
func NewService(appCtx *app.AppContext) *Service {
	profileRepo := repository.NewProfileRepository(appCtx.DB)
	scorer := matching.NewScorer(matching.PolicyFromString(appCtx.Config.Score.Policy))
	fetchLimit := appCtx.Config.Discover.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = 50
	}
	return &Service{
		appCtx:      appCtx,
		profileRepo: profileRepo,
		actionRepo:  repository.NewActionRepository(appCtx.DB),
		ranker:      matching.NewRanker(profileRepo, scorer, fetchLimit),
		fetchLimit:  fetchLimit,
	}
}

// Rank returns the top candidates for a user, excluding everyone the user
// already liked or disliked. Each call re-reads current state; there is no
// cursor to resume.
func (s *Service) Rank(ctx context.Context, userID uint64, limit int) ([]matching.RankedCandidate, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	self, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}

	actedOn, err := s.actionRepo.ActedOnIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}
	exclude := make(map[uint64]struct{}, len(actedOn))
	for _, id := range actedOn {
		exclude[id] = struct{}{}
	}

	return s.ranker.Rank(ctx, self, exclude, limit)
}

// Search returns the top candidates matching explicit criteria, ordered by
// compatibility. Unlike Rank it only excludes the searcher, not users they
// already acted on; a criteria search is a lookup, not a swipe feed.
func (s *Service) Search(ctx context.Context, userID uint64, filter repository.ProfileFilter, limit int) ([]matching.RankedCandidate, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	self, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}

	candidates, err := s.profileRepo.SearchProfiles(ctx, filter, []uint64{userID}, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: searching candidates: %v", apperrors.ErrFetchFailed, err)
	}

	return s.ranker.Top(self, candidates, limit), nil
}
