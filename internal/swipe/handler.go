package swipe

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/swipetonpro/backend/internal/httpx"
	"github.com/swipetonpro/backend/internal/middleware"
	"github.com/swipetonpro/backend/internal/models"
)

type SwipeRequest struct {
	TargetID  string `json:"target_id"`
	Direction string `json:"direction"`
}

// ProfileResponse is the public card shown in decks and liker lists.
type ProfileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Trade       string `json:"trade,omitempty"`
}

type LikesResponse struct {
	Count  int64             `json:"count"`
	Likers []ProfileResponse `json:"likers"`
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

// Swipe handles POST /swipes.
func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid target_id")
		return
	}
	res, err := h.svc.RecordSwipe(r.Context(), u, targetID, req.Direction)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDirection), errors.Is(err, ErrSelfSwipe):
			httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
		case errors.Is(err, ErrTargetNotFound):
			httpx.Error(w, http.StatusNotFound, "not_found", "target not found")
		default:
			h.log.Error("record swipe failed", "actor_id", u.ID, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Deck handles GET /swipes/deck.
func (h *Handler) Deck(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	users, err := h.svc.Deck(r.Context(), u, queryLimit(r))
	if err != nil {
		h.log.Error("deck query failed", "user_id", u.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toProfiles(users))
}

// Likes handles GET /swipes/likes.
func (h *Handler) Likes(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	likers, count, err := h.svc.Likes(r.Context(), u.ID, queryLimit(r))
	if err != nil {
		h.log.Error("likes query failed", "user_id", u.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, LikesResponse{Count: count, Likers: toProfiles(likers)})
}

func queryLimit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

func toProfiles(users []*models.User) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ProfileResponse{
			ID:          u.ID.String(),
			DisplayName: u.DisplayName,
			Role:        u.Role,
			Trade:       u.Trade,
		})
	}
	return out
}
