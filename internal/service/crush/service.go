// Package crush implements the anonymous channel: quota-limited weekly
// sends, duplicate rejection and reciprocal crush matching.
package crush

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusmatch/matchengine/internal/app"
	"github.com/campusmatch/matchengine/internal/db"
	apperrors "github.com/campusmatch/matchengine/internal/errors"
	"github.com/campusmatch/matchengine/internal/matching"
	"github.com/campusmatch/matchengine/internal/repository"
	"github.com/campusmatch/matchengine/internal/retry"
	"github.com/campusmatch/matchengine/internal/utils/pairkey"
	"github.com/campusmatch/matchengine/internal/utils/week"
)

// Service contains the crush-channel business logic.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	crushRepo   *repository.CrushRepository

	// now is swappable so tests can pin the weekly window.
	now func() time.Time
}

// NewService creates the crush service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		crushRepo:   repository.NewCrushRepository(appCtx.DB),
		now:         time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Send records an anonymous crush sender → recipient and checks for a
// reciprocal pending crush.
//
// Quota and duplicate checks share the insert's transaction: the sender's
// current-window rows are counted under a lock, so a burst of concurrent
// sends cannot exceed the cap through a read-then-write race. The
// reciprocal lookup ignores the weekly window on purpose: a pending
// crush from an earlier week stays eligible until matched.
func (s *Service) Send(ctx context.Context, senderID, recipientID uint64) (*matching.Outcome, error) {
	if senderID == recipientID {
		return nil, apperrors.ErrSelfAction
	}
	exists, err := s.profileRepo.Exists(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}
	if !exists {
		return nil, apperrors.ErrRecipientNotFound
	}

	now := s.now()
	window := week.For(now)
	limit := int64(s.appCtx.Config.Crush.WeeklyLimit)

	var outcome matching.Outcome
	err = retry.Transaction(ctx, s.appCtx.DB, func(tx *gorm.DB) error {
		outcome = matching.Outcome{}
		crushes := repository.NewCrushRepository(tx)

		used, err := crushes.CountSentInWindow(ctx, senderID, window, true)
		if err != nil {
			return err
		}
		if used >= limit {
			return apperrors.ErrQuotaExceeded
		}

		dup, err := crushes.ExistsInWindow(ctx, senderID, recipientID, window)
		if err != nil {
			return err
		}
		if dup {
			return apperrors.ErrDuplicateThisWeek
		}

		sent := &db.Crush{
			ID:          uuid.NewString(),
			SenderID:    senderID,
			RecipientID: recipientID,
			Status:      db.CrushPending,
			CreatedAt:   now,
		}
		if err := crushes.Create(ctx, sent); err != nil {
			return err
		}

		reciprocal, err := crushes.FindPending(ctx, recipientID, senderID)
		if err != nil {
			return err
		}
		if reciprocal == nil {
			return nil
		}

		if err := crushes.MarkMatched(ctx, sent.ID, reciprocal.ID); err != nil {
			return err
		}

		lo, hi := pairkey.Ordered(senderID, recipientID)
		match, created, err := repository.NewMatchRepository(tx).CreateIfAbsent(ctx, &db.Match{
			PairKey:  pairkey.Key(senderID, recipientID),
			UserLow:  lo,
			UserHigh: hi,
			Channel:  db.ChannelCrush,
			SourceA:  sent.ID,
			SourceB:  reciprocal.ID,
		})
		if err != nil {
			return err
		}
		if created {
			s.appCtx.Logger.Info("mutual crush, match created",
				"pair", match.PairKey, "channel", match.Channel)
		}

		outcome.Matched = true
		outcome.Match = match
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrQuotaExceeded) || errors.Is(err, apperrors.ErrDuplicateThisWeek) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistenceFailed, err)
	}

	// The cached remaining count is stale after a successful send.
	_ = s.appCtx.RedisCache.InvalidateCrushQuota(ctx, senderID, window.Start)

	return &outcome, nil
}

// SentThisWeek lists the sender's crushes inside the current window.
func (s *Service) SentThisWeek(ctx context.Context, senderID uint64) ([]db.Crush, error) {
	window := week.For(s.now())
	crushes, err := s.crushRepo.SentInWindow(ctx, senderID, window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}
	return crushes, nil
}

// Remaining returns how many sends the sender has left in the current
// window. Cache-first with the ledger as fallback; the cache entry is
// keyed by window start and expires with the window.
func (s *Service) Remaining(ctx context.Context, senderID uint64) (int64, error) {
	now := s.now()
	window := week.For(now)
	limit := int64(s.appCtx.Config.Crush.WeeklyLimit)

	if used, found, _ := s.appCtx.RedisCache.GetCrushQuotaUsed(ctx, senderID, window.Start); found {
		return remaining(limit, used), nil
	}

	used, err := s.crushRepo.CountSentInWindow(ctx, senderID, window, false)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}

	_ = s.appCtx.RedisCache.SetCrushQuotaUsed(ctx, senderID, window.Start, used, window.End)
	return remaining(limit, used), nil
}

func remaining(limit, used int64) int64 {
	if used >= limit {
		return 0
	}
	return limit - used
}
