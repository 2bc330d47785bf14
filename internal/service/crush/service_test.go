package crush_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campusmatch/matchengine/internal/app"
	"github.com/campusmatch/matchengine/internal/cache"
	"github.com/campusmatch/matchengine/internal/config"
	"github.com/campusmatch/matchengine/internal/db"
	apperrors "github.com/campusmatch/matchengine/internal/errors"
	"github.com/campusmatch/matchengine/internal/service/crush"
	"github.com/campusmatch/matchengine/internal/service/engage"
)

// A Wednesday, pinned so every test sees the same weekly window.
var testNow = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *crush.Service
	engage *engage.Service
	now    time.Time
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// setup spins up an isolated SQLite DB + miniredis, seeds five students
// and wires the crush service with a controllable clock.
func setup(t *testing.T) *fixture {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.Profile{}, &db.Action{}, &db.Crush{}, &db.Match{}))

	profiles := make([]db.Profile, 0, 5)
	for i := uint64(1); i <= 5; i++ {
		profiles = append(profiles, db.Profile{
			ID:           i,
			Username:     fmt.Sprintf("student%d", i),
			Email:        fmt.Sprintf("s%d@test.edu", i),
			PasswordHash: "x",
			Campus:       "Main Campus",
		})
	}
	require.NoError(t, gdb.Create(&profiles).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, redisCache, logger, cfg)

	f := &fixture{engage: engage.NewService(appCtx), now: testNow}
	f.svc = crush.NewService(appCtx).WithClock(func() time.Time { return f.now })
	return f
}

// setupFile uses an on-disk SQLite DB with immediate write transactions so
// concurrent writers queue on the file lock instead of failing on the
// shared-cache table lock. Used by the race tests.
func setupFile(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "engine.db") +
		"?_busy_timeout=5000&_txlock=immediate"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.Profile{}, &db.Action{}, &db.Crush{}, &db.Match{}))

	profiles := make([]db.Profile, 0, 8)
	for i := uint64(1); i <= 8; i++ {
		profiles = append(profiles, db.Profile{
			ID:           i,
			Username:     fmt.Sprintf("student%d", i),
			Email:        fmt.Sprintf("s%d@test.edu", i),
			PasswordHash: "x",
			Campus:       "Main Campus",
		})
	}
	require.NoError(t, gdb.Create(&profiles).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, redisCache, logger, cfg)

	f := &fixture{engage: engage.NewService(appCtx), now: testNow}
	f.svc = crush.NewService(appCtx).WithClock(func() time.Time { return f.now })
	return f
}

func TestSend_SelfRejected(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Send(context.Background(), 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrSelfAction)
}

func TestSend_UnknownRecipient(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Send(context.Background(), 1, 999)
	assert.ErrorIs(t, err, apperrors.ErrRecipientNotFound)
}

func TestSend_OneWayIsPending(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	outcome, err := f.svc.Send(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, outcome.Matched)

	sent, err := f.svc.SentThisWeek(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, db.CrushPending, sent[0].Status)
	assert.Equal(t, uint64(2), sent[0].RecipientID)
}

func TestSend_DuplicateThisWeek(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Send(ctx, 1, 2)
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, 1, 2)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateThisWeek)

	// the rejected send left no row behind
	sent, err := f.svc.SentThisWeek(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestSend_QuotaCeilingAndRollover(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	for _, recipient := range []uint64{2, 3, 4} {
		_, err := f.svc.Send(ctx, 1, recipient)
		require.NoError(t, err)
	}

	// 4th distinct recipient in the same week
	_, err := f.svc.Send(ctx, 1, 5)
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)

	left, err := f.svc.Remaining(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), left)

	// the window rolls over: quota is fresh again
	f.advance(7 * 24 * time.Hour)

	outcome, err := f.svc.Send(ctx, 1, 5)
	require.NoError(t, err)
	assert.False(t, outcome.Matched)

	left, err = f.svc.Remaining(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), left)
}

func TestSend_ReciprocalCrushMatches(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first, err := f.svc.Send(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, first.Matched)

	second, err := f.svc.Send(ctx, 2, 1)
	require.NoError(t, err)
	require.True(t, second.Matched)
	require.NotNil(t, second.Match)
	assert.Equal(t, "1:2", second.Match.PairKey)
	assert.Equal(t, db.ChannelCrush, second.Match.Channel)
	assert.NotEmpty(t, second.Match.SourceA)
	assert.NotEmpty(t, second.Match.SourceB)

	// both ledger rows were promoted exactly once
	for _, sender := range []uint64{1, 2} {
		sent, err := f.svc.SentThisWeek(ctx, sender)
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, db.CrushMatched, sent[0].Status)
	}

	matches, err := f.engage.MatchesFor(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSend_ReciprocalIgnoresWindow(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	// 1 crushes on 2, then two quiet weeks pass
	_, err := f.svc.Send(ctx, 1, 2)
	require.NoError(t, err)
	f.advance(14 * 24 * time.Hour)

	// the stale pending crush still satisfies reciprocity
	outcome, err := f.svc.Send(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, outcome.Matched)
}

func TestSend_CrossChannelPairMatchesOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	// direct-channel match first
	_, err := f.engage.RecordLike(ctx, 1, 2)
	require.NoError(t, err)
	direct, err := f.engage.RecordLike(ctx, 2, 1)
	require.NoError(t, err)
	require.True(t, direct.Matched)

	// a mutual crush between the same pair must not create a second match
	_, err = f.svc.Send(ctx, 1, 2)
	require.NoError(t, err)
	outcome, err := f.svc.Send(ctx, 2, 1)
	require.NoError(t, err)
	require.True(t, outcome.Matched)
	assert.Equal(t, db.ChannelDirect, outcome.Match.Channel)

	matches, err := f.engage.MatchesFor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "1:2", matches[0].PairKey)
}

func TestSend_ConcurrentBurstRespectsQuota(t *testing.T) {
	ctx := context.Background()
	f := setupFile(t)

	// 6 simultaneous sends to distinct recipients, all from student 1,
	// against a weekly cap of 3
	const burst = 6
	var wg sync.WaitGroup
	errs := make(chan error, burst)

	for i := 0; i < burst; i++ {
		recipient := uint64(i + 2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Send(ctx, 1, recipient)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
	}
	assert.Equal(t, 3, succeeded)

	// the ledger agrees: the cap held, never a fourth row
	sent, err := f.svc.SentThisWeek(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, sent, 3)

	left, err := f.svc.Remaining(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), left)
}

func TestRemaining_CacheInvalidatedOnSend(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	left, err := f.svc.Remaining(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), left)

	_, err = f.svc.Send(ctx, 1, 2)
	require.NoError(t, err)

	left, err = f.svc.Remaining(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), left)
}

func TestSentThisWeek_ExcludesPastWeeks(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Send(ctx, 1, 2)
	require.NoError(t, err)

	f.advance(7 * 24 * time.Hour)

	_, err = f.svc.Send(ctx, 1, 3)
	require.NoError(t, err)

	sent, err := f.svc.SentThisWeek(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, uint64(3), sent[0].RecipientID)
}
