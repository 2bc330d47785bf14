package discover_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
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
	"github.com/campusmatch/matchengine/internal/repository"
	"github.com/campusmatch/matchengine/internal/service/discover"
	"github.com/campusmatch/matchengine/internal/service/engage"
)

func setupServices(t *testing.T) (*discover.Service, *engage.Service) {
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

	// student1 is the searcher; 2 shares course+campus+year, 3 shares
	// campus only, 4 shares nothing, 5 is on another campus with an
	// adjacent year.
	profiles := []db.Profile{
		{ID: 1, Username: "student1", Email: "s1@test.edu", PasswordHash: "x", Campus: "Main", Course: "CS", Department: "Eng", YearOfStudy: 2, Interests: []string{"music", "chess"}, StudyHabits: []string{"library"}, Extracurriculars: []string{"debate"}},
		{ID: 2, Username: "student2", Email: "s2@test.edu", PasswordHash: "x", Campus: "Main", Course: "CS", Department: "Eng", YearOfStudy: 2, Interests: []string{"music", "chess"}, StudyHabits: []string{"library"}, Extracurriculars: []string{"debate"}},
		{ID: 3, Username: "student3", Email: "s3@test.edu", PasswordHash: "x", Campus: "Main", Course: "Law", Department: "Hum", YearOfStudy: 5},
		{ID: 4, Username: "student4", Email: "s4@test.edu", PasswordHash: "x", Campus: "North", Course: "Med", Department: "Health", YearOfStudy: 5},
		{ID: 5, Username: "student5", Email: "s5@test.edu", PasswordHash: "x", Campus: "North", Course: "EE", Department: "Eng", YearOfStudy: 3},
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

	return discover.NewService(appCtx), engage.NewService(appCtx)
}

func TestRank_OrdersAndExcludesSelf(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupServices(t)

	ranked, err := svc.Rank(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	// perfect twin first, then descending compatibility
	assert.Equal(t, uint64(2), ranked[0].Profile.ID)
	assert.Equal(t, 100, ranked[0].Score)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i].Score, ranked[i-1].Score)
	}
	for _, rc := range ranked {
		assert.NotEqual(t, uint64(1), rc.Profile.ID)
	}
}

func TestRank_ExcludesActedOnCandidates(t *testing.T) {
	ctx := context.Background()
	svc, engageSvc := setupServices(t)

	_, err := engageSvc.RecordLike(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, engageSvc.RecordDislike(ctx, 1, 3))

	ranked, err := svc.Rank(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	for _, rc := range ranked {
		assert.NotContains(t, []uint64{1, 2, 3}, rc.Profile.ID)
	}
}

func TestRank_LimitApplied(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupServices(t)

	ranked, err := svc.Rank(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
}

func TestRank_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupServices(t)

	_, err := svc.Rank(ctx, 999, 10)
	assert.ErrorIs(t, err, apperrors.ErrRecipientNotFound)
}

func TestSearch_ScalarCriteria(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupServices(t)

	// campus narrows to 2 and 3; best score first
	ranked, err := svc.Search(ctx, 1, repository.ProfileFilter{Campus: "Main"}, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, uint64(2), ranked[0].Profile.ID)
	assert.Equal(t, uint64(3), ranked[1].Profile.ID)

	// stacking year on top narrows further
	ranked, err = svc.Search(ctx, 1, repository.ProfileFilter{Campus: "Main", YearOfStudy: 5}, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, uint64(3), ranked[0].Profile.ID)
}

func TestSearch_TagCriteria(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupServices(t)

	ranked, err := svc.Search(ctx, 1, repository.ProfileFilter{Interests: []string{"music"}}, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, uint64(2), ranked[0].Profile.ID)

	ranked, err = svc.Search(ctx, 1, repository.ProfileFilter{Interests: []string{"rowing"}}, 10)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestSearch_DoesNotExcludeActedOn(t *testing.T) {
	ctx := context.Background()
	svc, engageSvc := setupServices(t)

	_, err := engageSvc.RecordLike(ctx, 1, 2)
	require.NoError(t, err)

	// a criteria lookup still surfaces already-liked users
	ranked, err := svc.Search(ctx, 1, repository.ProfileFilter{Campus: "Main"}, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, uint64(2), ranked[0].Profile.ID)
}

func TestSearch_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupServices(t)

	_, err := svc.Search(ctx, 999, repository.ProfileFilter{}, 10)
	assert.ErrorIs(t, err, apperrors.ErrRecipientNotFound)
}
