package crush

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/campusmatch/matchengine/internal/db"
	apperrors "github.com/campusmatch/matchengine/internal/errors"
)

type sendRequest struct {
	SenderID    uint64 `json:"sender_id"`
	RecipientID uint64 `json:"recipient_id"`
}

type sendResponse struct {
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

type crushPayload struct {
	ID          string    `json:"id"`
	RecipientID uint64    `json:"recipient_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// HandleSend handles POST /crushes.
func (s *Service) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.Invalid("invalid JSON body"))
		return
	}
	if req.SenderID == 0 || req.RecipientID == 0 {
		apperrors.WriteJSON(w, apperrors.Invalid("sender_id and recipient_id are required"))
		return
	}

	s.appCtx.Logger.Debug("SendCrush called", "sender", req.SenderID, "recipient", req.RecipientID)

	outcome, err := s.Send(r.Context(), req.SenderID, req.RecipientID)
	if err != nil {
		s.appCtx.Logger.Error("SendCrush failed", "sender", req.SenderID, "recipient", req.RecipientID, "err", err)
		apperrors.WriteJSON(w, err)
		return
	}

	resp := sendResponse{Result: "sent"}
	if outcome.Matched {
		resp.Result = "matched"
		resp.Match = &matchPayload{
			PairKey:   outcome.Match.PairKey,
			UserLow:   outcome.Match.UserLow,
			UserHigh:  outcome.Match.UserHigh,
			Channel:   outcome.Match.Channel,
			CreatedAt: outcome.Match.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSent handles GET /crushes/sent?user_id=.
func (s *Service) HandleSent(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	crushes, err := s.SentThisWeek(r.Context(), userID)
	if err != nil {
		s.appCtx.Logger.Error("SentThisWeek failed", "user", userID, "err", err)
		apperrors.WriteJSON(w, err)
		return
	}

	payload := make([]crushPayload, 0, len(crushes))
	for _, c := range crushes {
		payload = append(payload, toCrushPayload(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"crushes": payload})
}

// HandleRemaining handles GET /crushes/remaining?user_id=.
func (s *Service) HandleRemaining(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	left, err := s.Remaining(r.Context(), userID)
	if err != nil {
		s.appCtx.Logger.Error("Remaining failed", "user", userID, "err", err)
		apperrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"remaining": left})
}

// toCrushPayload keeps the sender anonymous on the wire: recipients are
// shown, sender identity never leaves the ledger through this surface.
func toCrushPayload(c db.Crush) crushPayload {
	return crushPayload{
		ID:          c.ID,
		RecipientID: c.RecipientID,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
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
