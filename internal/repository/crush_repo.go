package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campusmatch/matchengine/internal/db"
	"github.com/campusmatch/matchengine/internal/utils/week"
)

// CrushRepository provides data access for the anonymous crush ledger.
type CrushRepository struct {
	db *gorm.DB
}

// NewCrushRepository creates a new repository bound to the given DB
// connection. Pass a transaction handle to make the calls part of that
// transaction.
func NewCrushRepository(database *gorm.DB) *CrushRepository {
	return &CrushRepository{db: database}
}

// CountSentInWindow counts the sender's crushes created inside the window.
// With lock=true (inside the send transaction) the rows are read FOR
// UPDATE on MySQL so a burst of concurrent sends cannot slip past the
// quota between count and insert.
func (r *CrushRepository) CountSentInWindow(ctx context.Context, senderID uint64, w week.Window, lock bool) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Crush{}).
		Where("sender_id = ? AND created_at >= ? AND created_at < ?", senderID, w.Start, w.End)
	if lock && r.db.Dialector.Name() == "mysql" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// ExistsInWindow reports whether sender already crushed on recipient
// inside the window.
func (r *CrushRepository) ExistsInWindow(ctx context.Context, senderID, recipientID uint64, w week.Window) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Crush{}).
		Where("sender_id = ? AND recipient_id = ? AND created_at >= ? AND created_at < ?",
			senderID, recipientID, w.Start, w.End).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a new crush row.
func (r *CrushRepository) Create(ctx context.Context, crush *db.Crush) error {
	return r.db.WithContext(ctx).Create(crush).Error
}

// FindPending returns the oldest pending crush sender → recipient, or
// (nil, nil) when there is none. The lookup deliberately ignores the
// weekly window: a pending crush stays eligible for reciprocity until it
// is matched.
func (r *CrushRepository) FindPending(ctx context.Context, senderID, recipientID uint64) (*db.Crush, error) {
	query := r.db.WithContext(ctx).
		Where("sender_id = ? AND recipient_id = ? AND status = ?", senderID, recipientID, db.CrushPending).
		Order("created_at ASC")
	if r.db.Dialector.Name() == "mysql" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var crush db.Crush
	if err := query.First(&crush).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &crush, nil
}

// MarkMatched promotes the given pending crushes to matched. The status
// guard keeps the transition one-way.
func (r *CrushRepository) MarkMatched(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&db.Crush{}).
		Where("id IN ? AND status = ?", ids, db.CrushPending).
		Update("status", db.CrushMatched).Error
}

// SentInWindow lists the sender's crushes created inside the window,
// oldest first.
func (r *CrushRepository) SentInWindow(ctx context.Context, senderID uint64, w week.Window) ([]db.Crush, error) {
	var crushes []db.Crush
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND created_at >= ? AND created_at < ?", senderID, w.Start, w.End).
		Order("created_at ASC").
		Find(&crushes).Error
	return crushes, err
}
