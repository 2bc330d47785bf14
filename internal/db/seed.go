package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	seedCampuses = []string{"Main Campus", "City Campus", "North Campus"}

	seedCourses = map[string]string{
		"Computer Science":       "Engineering",
		"Electrical Engineering": "Engineering",
		"Medicine":               "Health Sciences",
		"Nursing":                "Health Sciences",
		"Law":                    "Humanities",
		"History":                "Humanities",
	}

	seedInterests = []string{"music", "chess", "football", "gaming", "hiking", "photography", "reading", "travel"}
	seedHabits    = []string{"early-bird", "night-owl", "library", "group-study", "flashcards"}
	seedClubs     = []string{"debate", "drama", "robotics", "volunteering", "choir"}
)

// SeedTestData resets the database and populates it with demo profiles,
// direct-channel actions and a handful of crushes.
//
// Behavior:
//  1. Clears existing data in all engine tables.
//  2. Creates 20 profiles spread across campuses/courses/years.
//  3. Generates ~150 like/dislike actions with ~70% likes; every 4th pair
//     gets a reciprocal like so mutual matches show up in demos.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"matches", "crushes", "actions", "profiles"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE profiles AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'profiles'")
	}

	log.Println("Cleared existing data")

	courseNames := make([]string, 0, len(seedCourses))
	for c := range seedCourses {
		courseNames = append(courseNames, c)
	}

	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		course := courseNames[r.Intn(len(courseNames))]
		profile := Profile{
			Username:         fmt.Sprintf("student%d", i),
			Email:            fmt.Sprintf("student%d@example.edu", i),
			PasswordHash:     string(hash),
			Active:           true,
			Campus:           seedCampuses[r.Intn(len(seedCampuses))],
			Course:           course,
			Department:       seedCourses[course],
			YearOfStudy:      1 + r.Intn(5),
			Interests:        pickTags(r, seedInterests, 2+r.Intn(3)),
			StudyHabits:      pickTags(r, seedHabits, 1+r.Intn(2)),
			Extracurriculars: pickTags(r, seedClubs, 1+r.Intn(2)),
		}

		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
	}
	log.Println("Seeded 20 profiles.")

	counter := 0
	for actorID := uint64(1); actorID <= 20; actorID++ {
		for j := 0; j < 8; j++ {
			recipientID := uint64(r.Intn(20) + 1)
			if actorID == recipientID {
				continue
			}

			liked := r.Intn(100) < 70

			if counter%4 == 0 {
				liked = true
				recip := Action{ActorID: recipientID, RecipientID: actorID, Liked: true}
				db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "actor_id"}, {Name: "recipient_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
				}).Create(&recip)
			}

			action := Action{ActorID: actorID, RecipientID: recipientID, Liked: liked}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "actor_id"}, {Name: "recipient_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
			}).Create(&action).Error; err != nil {
				return fmt.Errorf("failed to seed action: %w", err)
			}

			counter++
		}
	}
	log.Printf("Seeded %d actions.", counter)

	return nil
}

func pickTags(r *rand.Rand, pool []string, n int) []string {
	idx := r.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}
