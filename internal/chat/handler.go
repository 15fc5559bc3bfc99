package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/swipetonpro/backend/internal/httpx"
	"github.com/swipetonpro/backend/internal/middleware"
	"github.com/swipetonpro/backend/internal/models"
)

type SendMessageRequest struct {
	MsgType          string     `json:"msg_type"`
	Content          string     `json:"content"`
	QuoteAmountCents *int64     `json:"quote_amount_cents,omitempty"`
	MeetingAt        *time.Time `json:"meeting_at,omitempty"`
}

// MatchResponse is a match as seen by one of its participants.
type MatchResponse struct {
	ID           string     `json:"id"`
	OtherUserID  string     `json:"other_user_id"`
	ChatUnlocked bool       `json:"chat_unlocked"`
	UnlockedAt   *time.Time `json:"unlocked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// ListMatches handles GET /matches.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	matches, err := h.svc.ListMatches(r.Context(), u.ID)
	if err != nil {
		h.log.Error("list matches failed", "user_id", u.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	out := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchResponse{
			ID:           m.ID.String(),
			OtherUserID:  m.Other(u.ID).String(),
			ChatUnlocked: m.ChatUnlocked,
			UnlockedAt:   m.UnlockedAt,
			CreatedAt:    m.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// ListMessages handles GET /matches/{id}/messages.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	matchID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid match id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := h.svc.ListMessages(r.Context(), u, matchID, limit)
	if err != nil {
		h.writeError(w, u, err)
		return
	}
	httpx.JSON(w, http.StatusOK, msgs)
}

// SendMessage handles POST /matches/{id}/messages.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	matchID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid match id")
		return
	}
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	if req.MsgType == "" {
		req.MsgType = models.MessageText
	}
	msg, err := h.svc.SendMessage(r.Context(), u, matchID, SendInput{
		MsgType:          req.MsgType,
		Content:          req.Content,
		QuoteAmountCents: req.QuoteAmountCents,
		MeetingAt:        req.MeetingAt,
	})
	if err != nil {
		h.writeError(w, u, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) writeError(w http.ResponseWriter, u *models.User, err error) {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		httpx.Error(w, http.StatusNotFound, "not_found", "match not found")
	case errors.Is(err, ErrNotParticipant):
		httpx.Error(w, http.StatusForbidden, "not_a_match_participant", "you are not part of this match")
	case errors.Is(err, ErrChatLocked):
		httpx.Error(w, http.StatusPaymentRequired, "chat_locked", "unlock the conversation first")
	case errors.Is(err, ErrInvalidMessage):
		httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		h.log.Error("chat request failed", "user_id", u.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
	}
}
