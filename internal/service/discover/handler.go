package discover

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/campusmatch/matchengine/internal/errors"
	"github.com/campusmatch/matchengine/internal/matching"
	"github.com/campusmatch/matchengine/internal/repository"
)

type candidatePayload struct {
	CandidateID uint64 `json:"candidate_id"`
	Username    string `json:"username"`
	Campus      string `json:"campus"`
	Course      string `json:"course"`
	YearOfStudy int    `json:"year_of_study"`
	Score       int    `json:"score"`
}

// HandleRank handles GET /discover?user_id=&limit=.
func (s *Service) HandleRank(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		apperrors.WriteJSON(w, apperrors.Invalid("user_id must be a valid id"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ranked, err := s.Rank(r.Context(), userID, limit)
	if err != nil {
		s.appCtx.Logger.Error("Rank failed", "user", userID, "err", err)
		apperrors.WriteJSON(w, err)
		return
	}

	writeCandidates(w, ranked)
}

// HandleSearch handles GET /discover/search. Criteria come from query
// params: campus, course, department, year, plus comma-separated
// interests, study_habits and extracurriculars.
func (s *Service) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := strconv.ParseUint(q.Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		apperrors.WriteJSON(w, apperrors.Invalid("user_id must be a valid id"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	year, _ := strconv.Atoi(q.Get("year"))

	filter := repository.ProfileFilter{
		Campus:           q.Get("campus"),
		Course:           q.Get("course"),
		Department:       q.Get("department"),
		YearOfStudy:      year,
		Interests:        splitTags(q.Get("interests")),
		StudyHabits:      splitTags(q.Get("study_habits")),
		Extracurriculars: splitTags(q.Get("extracurriculars")),
	}

	ranked, err := s.Search(r.Context(), userID, filter, limit)
	if err != nil {
		s.appCtx.Logger.Error("Search failed", "user", userID, "err", err)
		apperrors.WriteJSON(w, err)
		return
	}

	writeCandidates(w, ranked)
}

func writeCandidates(w http.ResponseWriter, ranked []matching.RankedCandidate) {
	payload := make([]candidatePayload, 0, len(ranked))
	for _, rc := range ranked {
		payload = append(payload, candidatePayload{
			CandidateID: rc.Profile.ID,
			Username:    rc.Profile.Username,
			Campus:      rc.Profile.Campus,
			Course:      rc.Profile.Course,
			YearOfStudy: rc.Profile.YearOfStudy,
			Score:       rc.Score,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"candidates": payload})
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
