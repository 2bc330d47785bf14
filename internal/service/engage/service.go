// Package engage implements the direct channel: recording like/dislike
// verdicts, detecting reciprocal likes and reading the match registry.
package engage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/campusmatch/matchengine/internal/app"
	"github.com/campusmatch/matchengine/internal/db"
	apperrors "github.com/campusmatch/matchengine/internal/errors"
	"github.com/campusmatch/matchengine/internal/matching"
	"github.com/campusmatch/matchengine/internal/repository"
	"github.com/campusmatch/matchengine/internal/retry"
	"github.com/campusmatch/matchengine/internal/utils/pairkey"
)

// Service contains the business logic on top of the repository and cache
// layers.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	actionRepo  *repository.ActionRepository
	matchRepo   *repository.MatchRepository
}

// NewService creates the engage service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		actionRepo:  repository.NewActionRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
	}
}

// RecordLike stores actor → recipient as liked and checks for a
// reciprocal like.
//
// The ledger upsert, the locking read of the counterpart's row and the
// conditional match creation run inside one transaction, retried on lock
// conflicts. Whichever side of a racing pair observes reciprocity first
// performs the promotion; the other converges on the existing Match via
// its pair key. Every step is idempotent, so callers may safely retry a
// timed-out request.
func (s *Service) RecordLike(ctx context.Context, actorID, recipientID uint64) (*matching.Outcome, error) {
	if err := s.checkParticipants(ctx, actorID, recipientID); err != nil {
		return nil, err
	}

	var outcome matching.Outcome
	err := retry.Transaction(ctx, s.appCtx.DB, func(tx *gorm.DB) error {
		outcome = matching.Outcome{}

		actions := repository.NewActionRepository(tx)
		if err := actions.UpsertAction(ctx, actorID, recipientID, true); err != nil {
			return err
		}

		reciprocal, err := actions.GetForUpdate(ctx, recipientID, actorID)
		if err != nil {
			return err
		}
		if reciprocal == nil || !reciprocal.Liked {
			return nil
		}

		lo, hi := pairkey.Ordered(actorID, recipientID)
		match, created, err := repository.NewMatchRepository(tx).CreateIfAbsent(ctx, &db.Match{
			PairKey:  pairkey.Key(actorID, recipientID),
			UserLow:  lo,
			UserHigh: hi,
			Channel:  db.ChannelDirect,
			SourceA:  likeSource(actorID, recipientID),
			SourceB:  likeSource(recipientID, actorID),
		})
		if err != nil {
			return err
		}
		if created {
			s.appCtx.Logger.Info("mutual like, match created",
				"pair", match.PairKey, "channel", match.Channel)
		}

		outcome.Matched = true
		outcome.Match = match
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistenceFailed, err)
	}

	// Best-effort counter bump; the cache is approximate and TTL'd, the
	// ledger count is the fallback.
	key := s.appCtx.RedisCache.KeyForLikeCount(recipientID)
	_, _ = s.appCtx.RedisCache.Incr(ctx, key)
	_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()

	return &outcome, nil
}

// RecordDislike stores actor → recipient as disliked. No reciprocity
// check on this path.
func (s *Service) RecordDislike(ctx context.Context, actorID, recipientID uint64) error {
	if err := s.checkParticipants(ctx, actorID, recipientID); err != nil {
		return err
	}

	if err := s.actionRepo.UpsertAction(ctx, actorID, recipientID, false); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistenceFailed, err)
	}

	key := s.appCtx.RedisCache.KeyForLikeCount(recipientID)
	_, _ = s.appCtx.RedisCache.Decr(ctx, key)
	_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()

	return nil
}

// MatchesFor returns every match the user is part of, across both
// channels.
func (s *Service) MatchesFor(ctx context.Context, userID uint64) ([]db.Match, error) {
	matches, err := s.matchRepo.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}
	return matches, nil
}

// CountLikers returns how many users currently like the recipient.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On cache miss, falls back to the ledger count.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountLikers(ctx context.Context, userID uint64) (int64, error) {
	if cached, found, _ := s.appCtx.RedisCache.GetLikeCount(ctx, userID); found {
		return cached, nil
	}

	count, err := s.actionRepo.CountLikers(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}

	_ = s.appCtx.RedisCache.UpdateLikeCount(ctx, userID, count)
	return count, nil
}

// checkParticipants rejects self-interaction and unknown recipients
// before any write.
func (s *Service) checkParticipants(ctx context.Context, actorID, recipientID uint64) error {
	if actorID == recipientID {
		return apperrors.ErrSelfAction
	}
	exists, err := s.profileRepo.Exists(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}
	if !exists {
		return apperrors.ErrRecipientNotFound
	}
	return nil
}

func likeSource(actorID, recipientID uint64) string {
	return "like:" + strconv.FormatUint(actorID, 10) + ":" + strconv.FormatUint(recipientID, 10)
}
