package payment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/swipetonpro/backend/internal/httpx"
	"github.com/swipetonpro/backend/internal/ledger"
	"github.com/swipetonpro/backend/internal/middleware"
	"github.com/swipetonpro/backend/internal/models"
)

type PurchaseRequest struct {
	Credits int `json:"credits"`
}

type WebhookRequest struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type CheckoutResponse struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

type Handler struct {
	svc     Service
	credits ledger.Service
	log     *slog.Logger
}

func NewHandler(svc Service, credits ledger.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, credits: credits, log: log}
}

// Unlock handles POST /matches/{id}/unlock.
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
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
	session, err := h.svc.InitiateUnlock(r.Context(), u, matchID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMatchNotFound):
			httpx.Error(w, http.StatusNotFound, "not_found", "match not found")
		case errors.Is(err, ErrNotParticipant):
			httpx.Error(w, http.StatusForbidden, "not_a_match_participant", "you are not part of this match")
		case errors.Is(err, ErrNotASeeker):
			httpx.Error(w, http.StatusForbidden, "forbidden", "only the seeker pays for unlock")
		case errors.Is(err, ErrAlreadyUnlocked):
			httpx.Error(w, http.StatusConflict, "already_unlocked", "chat is already unlocked")
		default:
			h.log.Error("initiate unlock failed", "user_id", u.ID, "match_id", matchID, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, toCheckoutResponse(session))
}

// Purchase handles POST /credits/purchase.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	session, err := h.svc.PurchaseCredits(r.Context(), u, req.Credits)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAPro):
			httpx.Error(w, http.StatusForbidden, "forbidden", "only professionals buy credits")
		case errors.Is(err, ErrInvalidCredits):
			httpx.Error(w, http.StatusBadRequest, "invalid_input", "credits must be at least 1")
		default:
			h.log.Error("purchase failed", "user_id", u.ID, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, toCheckoutResponse(session))
}

// Ledger handles GET /credits/ledger.
func (h *Handler) Ledger(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	entries, err := h.credits.ListByUser(r.Context(), u.ID, 50)
	if err != nil {
		h.log.Error("ledger query failed", "user_id", u.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

// Webhook handles POST /payments/webhook. Not behind auth middleware; the
// provider calls it directly.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	if req.Reference == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "missing reference")
		return
	}
	err := h.svc.ConfirmWebhook(r.Context(), req.Reference, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			httpx.Error(w, http.StatusNotFound, "not_found", "unknown reference")
		case errors.Is(err, ErrPaymentNotConfirmed):
			httpx.Error(w, http.StatusConflict, "payment_not_confirmed", "session can no longer be confirmed")
		default:
			h.log.Error("webhook failed", "reference", req.Reference, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toCheckoutResponse(s *models.CheckoutSession) CheckoutResponse {
	return CheckoutResponse{
		Reference:   s.Reference,
		CheckoutURL: s.CheckoutURL,
		AmountCents: s.AmountCents,
		Currency:    s.Currency,
	}
}
