package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campusmatch/matchengine/internal/db"
)

// ActionRepository provides data access for the direct-channel ledger:
// like/dislike rows between users.
type ActionRepository struct {
	db *gorm.DB
}

// NewActionRepository creates a new repository bound to the given DB
// connection. Pass a transaction handle to make the calls part of that
// transaction.
func NewActionRepository(database *gorm.DB) *ActionRepository {
	return &ActionRepository{db: database}
}

// UpsertAction inserts or overwrites the verdict actor → recipient.
//
// Behavior:
//   - If the (actor_id, recipient_id) pair exists, the row is updated with
//     the new "liked" value (one verdict per round).
//   - Re-submitting the same verdict is an idempotent no-op.
//   - Composite PK ensures a single row per ordered pair.
func (r *ActionRepository) UpsertAction(ctx context.Context, actorID, recipientID uint64, liked bool) error {
	action := db.Action{
		ActorID:     actorID,
		RecipientID: recipientID,
		Liked:       liked,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "recipient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
		}).
		Create(&action).Error
}

// GetForUpdate reads the actor → recipient row under a row lock (MySQL).
// Two opposing reciprocity checks on the same pair then either serialize
// or deadlock, and the deadlocked one is retried by the service layer.
// SQLite serializes writers on its own, so the lock clause is skipped
// there. Returns (nil, nil) when no row exists.
func (r *ActionRepository) GetForUpdate(ctx context.Context, actorID, recipientID uint64) (*db.Action, error) {
	query := r.db.WithContext(ctx).
		Where("actor_id = ? AND recipient_id = ?", actorID, recipientID)
	if r.db.Dialector.Name() == "mysql" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var action db.Action
	if err := query.First(&action).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &action, nil
}

// HasLiked checks whether an actor has liked a recipient.
func (r *ActionRepository) HasLiked(ctx context.Context, actorID, recipientID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Action{}).
		Where("actor_id = ? AND recipient_id = ? AND liked = ?", actorID, recipientID, true).
		Count(&count).Error
	return count > 0, err
}

// ActedOnIDs returns every recipient the actor already liked or disliked.
// The ranker uses it as the exclude set.
func (r *ActionRepository) ActedOnIDs(ctx context.Context, actorID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Action{}).
		Where("actor_id = ?", actorID).
		Pluck("recipient_id", &ids).Error
	return ids, err
}

// CountLikers returns how many users currently like the recipient.
// Used with the Redis counter cache (DB is the fallback).
func (r *ActionRepository) CountLikers(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Action{}).
		Where("recipient_id = ? AND liked = ?", recipientID, true).
		Count(&count).Error
	return count, err
}
