package engage

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/campusmatch/matchengine/internal/db"
	apperrors "github.com/campusmatch/matchengine/internal/errors"
	"github.com/campusmatch/matchengine/internal/matching"
)

type actionRequest struct {
	ActorID     uint64 `json:"actor_id"`
	RecipientID uint64 `json:"recipient_id"`
}

type actionResponse struct {
	Result string        `json:"result"` // "sent" or "matched"
	Match  *matchPayload `json:"match,omitempty"`
}

type matchPayload struct {
	PairKey   string    `json:"pair_key"`
	UserLow   uint64    `json:"user_low"`
	UserHigh  uint64    `json:"user_high"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
}

func toMatchPayload(m *db.Match) *matchPayload {
	if m == nil {
		return nil
	}
	return &matchPayload{
		PairKey:   m.PairKey,
		UserLow:   m.UserLow,
		UserHigh:  m.UserHigh,
		Channel:   m.Channel,
		CreatedAt: m.CreatedAt,
	}
}

func outcomeResponse(outcome *matching.Outcome) actionResponse {
	if outcome.Matched {
		return actionResponse{Result: "matched", Match: toMatchPayload(outcome.Match)}
	}
	return actionResponse{Result: "sent"}
}

// HandleLike handles POST /likes.
func (s *Service) HandleLike(w http.ResponseWriter, r *http.Request) {
	req, err := decodeActionRequest(r)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	s.appCtx.Logger.Debug("RecordLike called", "actor", req.ActorID, "recipient", req.RecipientID)

	outcome, err := s.RecordLike(r.Context(), req.ActorID, req.RecipientID)
	if err != nil {
		s.appCtx.Logger.Error("RecordLike failed", "actor", req.ActorID, "recipient", req.RecipientID, "err", err)
		apperrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeResponse(outcome))
}

// HandleDislike handles POST /dislikes.
func (s *Service) HandleDislike(w http.ResponseWriter, r *http.Request) {
	req, err := decodeActionRequest(r)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	if err := s.RecordDislike(r.Context(), req.ActorID, req.RecipientID); err != nil {
		s.appCtx.Logger.Error("RecordDislike failed", "actor", req.ActorID, "recipient", req.RecipientID, "err", err)
		apperrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": "recorded"})
}

// HandleMatches handles GET /matches?user_id=.
func (s *Service) HandleMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	matches, err := s.MatchesFor(r.Context(), userID)
	if err != nil {
		s.appCtx.Logger.Error("MatchesFor failed", "user", userID, "err", err)
		apperrors.WriteJSON(w, err)
		return
	}

	payload := make([]*matchPayload, 0, len(matches))
	for i := range matches {
		payload = append(payload, toMatchPayload(&matches[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": payload})
}

// HandleLikeCount handles GET /likes/count?user_id=.
func (s *Service) HandleLikeCount(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	count, err := s.CountLikers(r.Context(), userID)
	if err != nil {
		s.appCtx.Logger.Error("CountLikers failed", "user", userID, "err", err)
		apperrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func decodeActionRequest(r *http.Request) (actionRequest, error) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, apperrors.Invalid("invalid JSON body")
	}
	if req.ActorID == 0 || req.RecipientID == 0 {
		return req, apperrors.Invalid("actor_id and recipient_id are required")
	}
	return req, nil
}

func queryUserID(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("user_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Invalid("user_id must be a valid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
