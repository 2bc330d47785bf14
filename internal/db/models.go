package db

import (
	"time"
)

// Crush channel identifiers for Match.Channel.
const (
	ChannelDirect = "direct"
	ChannelCrush  = "crush"
)

// Crush status values. A crush is created pending and is promoted to
// matched exactly once; it never reverts. Weekly expiry is computed from
// CreatedAt at query time, never stored.
const (
	CrushPending = "pending"
	CrushMatched = "matched"
)

// Profile holds the per-user attributes consumed by the scorer. The engine
// treats profiles as read-only apart from seeding; account fields exist so
// the seeder can produce realistic demo users.
//
// A missing attribute (empty campus/course, zero year, empty tag lists)
// contributes zero to the compatibility score for its category.
type Profile struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`

	Campus           string   `gorm:"size:64"`
	Course           string   `gorm:"size:64"`
	Department       string   `gorm:"size:64"`
	YearOfStudy      int      `gorm:"default:0"`
	Interests        []string `gorm:"serializer:json;type:text"`
	StudyHabits      []string `gorm:"serializer:json;type:text"`
	Extracurriculars []string `gorm:"serializer:json;type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Action is an actor's like/dislike verdict on a recipient (the direct
// channel ledger).
//
// Composite PK: (ActorID, RecipientID)
//   - One row per ordered pair; re-submitting the same verdict is a no-op
//     upsert and switching verdict overwrites, so a recipient sits in at
//     most one of {liked, disliked} at a time.
//
// Index idx_action_recipient_liked(recipient_id, liked) backs the O(1)
// reciprocal lookup and inbound-like counting.
type Action struct {
	ActorID     uint64    `gorm:"primaryKey"`
	RecipientID uint64    `gorm:"primaryKey;index:idx_action_recipient_liked,priority:1"`
	Liked       bool      `gorm:"not null;index:idx_action_recipient_liked,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Crush is one accepted anonymous send (the crush channel ledger).
//
// Indexes:
//   - idx_crush_sender_created(sender_id, created_at)
//     backs the weekly quota count.
//   - idx_crush_reciprocal(recipient_id, sender_id, status)
//     backs the pending reciprocal lookup.
type Crush struct {
	ID          string    `gorm:"primaryKey;size:36"`
	SenderID    uint64    `gorm:"not null;index:idx_crush_sender_created,priority:1;index:idx_crush_reciprocal,priority:2"`
	RecipientID uint64    `gorm:"not null;index:idx_crush_reciprocal,priority:1"`
	Status      string    `gorm:"size:16;not null;default:pending;index:idx_crush_reciprocal,priority:3"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_crush_sender_created,priority:2"`
}

// Match is the canonical record that two users have mutual confirmed
// interest. PairKey is the sorted "<lo>:<hi>" identifier of the unordered
// user pair and serves as the idempotency key: the primary key guarantees
// at most one Match per pair ever, across both channels and under racing
// writers. Rows are immutable once created.
//
// SourceA/SourceB carry the originating record identifiers: the two crush
// UUIDs for channel=crush, the ordered like keys for channel=direct.
type Match struct {
	PairKey   string    `gorm:"primaryKey;size:64"`
	UserLow   uint64    `gorm:"not null;index"`
	UserHigh  uint64    `gorm:"not null;index"`
	Channel   string    `gorm:"size:16;not null"`
	SourceA   string    `gorm:"size:64"`
	SourceB   string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
