package boost

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/swipetonpro/backend/internal/httpx"
	"github.com/swipetonpro/backend/internal/ledger"
	"github.com/swipetonpro/backend/internal/middleware"
)

type BoostRequest struct {
	TargetSeekerID string `json:"target_seeker_id"`
}

type BoostResponse struct {
	CreditsLeft int `json:"credits_left"`
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

// Use handles POST /boosts.
func (h *Handler) Use(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	var req BoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	targetID, err := uuid.Parse(req.TargetSeekerID)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid target_seeker_id")
		return
	}
	left, err := h.svc.UseBoost(r.Context(), u, targetID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAPro), errors.Is(err, ErrGhostPro):
			httpx.Error(w, http.StatusForbidden, "forbidden", err.Error())
		case errors.Is(err, ErrBoostDisabled):
			httpx.Error(w, http.StatusConflict, "boost_disabled", "boost is not enabled for this account")
		case errors.Is(err, ledger.ErrInsufficientCredits):
			httpx.Error(w, http.StatusConflict, "insufficient_credits", "not enough credits")
		case errors.Is(err, ErrTargetNotFound):
			httpx.Error(w, http.StatusNotFound, "not_found", "seeker not found")
		default:
			h.log.Error("boost failed", "pro_id", u.ID, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, BoostResponse{CreditsLeft: left})
}
