package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campusmatch/matchengine/internal/db"
)

// MatchRepository provides data access for the canonical match registry.
// There is no update or delete: matches are immutable once created.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB
// connection. Pass a transaction handle to make the calls part of that
// transaction.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CreateIfAbsent inserts the match unless one already exists for its pair
// key, and returns the canonical row either way. created reports whether
// this call inserted it. Both reciprocity detectors rely on this primitive
// for idempotence: retries and the losing side of a race land on the
// existing row.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, match *db.Match) (*db.Match, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(match)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0

	var existing db.Match
	if err := r.db.WithContext(ctx).
		Where("pair_key = ?", match.PairKey).
		First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, created, nil
}

// ForUser returns every match the user is part of, newest first.
func (r *MatchRepository) ForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_low = ? OR user_high = ?", userID, userID).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}

// Get fetches one match by pair key. Returns gorm.ErrRecordNotFound when
// the pair never matched.
func (r *MatchRepository) Get(ctx context.Context, pairKey string) (*db.Match, error) {
	var match db.Match
	if err := r.db.WithContext(ctx).
		Where("pair_key = ?", pairKey).
		First(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}
