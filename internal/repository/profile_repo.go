package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campusmatch/matchengine/internal/db"
)

// ProfileRepository is the engine's read boundary over the profile store.
// Profiles are owned by the surrounding application; the engine only reads
// them (plus Create for seeding and tests).
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetProfile fetches one profile. Returns gorm.ErrRecordNotFound when the
// user does not exist.
func (r *ProfileRepository) GetProfile(ctx context.Context, id uint64) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Exists reports whether a profile exists and is active.
func (r *ProfileRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id = ? AND active = ?", id, true).
		Count(&count).Error
	return count > 0, err
}

// ListProfiles returns up to limit active profiles, skipping the excluded
// IDs, ordered by ID for deterministic fetches.
func (r *ProfileRepository) ListProfiles(ctx context.Context, excluding []uint64, limit int) ([]db.Profile, error) {
	var profiles []db.Profile
	query := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Limit(limit)
	if len(excluding) > 0 {
		query = query.Where("id NOT IN ?", excluding)
	}
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// ProfileFilter narrows a candidate search. Zero-valued fields are not
// applied. Tag slices match when the candidate shares at least one entry.
type ProfileFilter struct {
	Campus           string
	Course           string
	Department       string
	YearOfStudy      int
	Interests        []string
	StudyHabits      []string
	Extracurriculars []string
}

// SearchProfiles returns up to limit active profiles matching the filter,
// skipping the excluded IDs. Scalar criteria go into the query; tag
// criteria are applied after the fetch because tags are stored serialized.
func (r *ProfileRepository) SearchProfiles(ctx context.Context, filter ProfileFilter, excluding []uint64, limit int) ([]db.Profile, error) {
	query := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Limit(limit)
	if len(excluding) > 0 {
		query = query.Where("id NOT IN ?", excluding)
	}
	if filter.Campus != "" {
		query = query.Where("campus = ?", filter.Campus)
	}
	if filter.Course != "" {
		query = query.Where("course = ?", filter.Course)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.YearOfStudy > 0 {
		query = query.Where("year_of_study = ?", filter.YearOfStudy)
	}

	var profiles []db.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}

	filtered := profiles[:0]
	for _, p := range profiles {
		if sharesAny(p.Interests, filter.Interests) &&
			sharesAny(p.StudyHabits, filter.StudyHabits) &&
			sharesAny(p.Extracurriculars, filter.Extracurriculars) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// sharesAny reports whether have contains at least one of want. An empty
// want means the criterion is not applied.
func sharesAny(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Create inserts a profile. Used by the seeder and tests only.
func (r *ProfileRepository) Create(ctx context.Context, p *db.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}
