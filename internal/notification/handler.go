package notification

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/swipetonpro/backend/internal/httpx"
	"github.com/swipetonpro/backend/internal/middleware"
)

type Handler struct {
	repo *Repository
	log  *slog.Logger
}

func NewHandler(repo *Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, log: log}
}

// List returns the authenticated user's inbox, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	list, err := h.repo.ListByUser(r.Context(), u.ID, 50)
	if err != nil {
		h.log.Error("list notifications failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// MarkRead handles POST /notifications/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid notification id")
		return
	}
	ok, err := h.repo.MarkRead(r.Context(), u.ID, id)
	if err != nil {
		h.log.Error("mark notification read failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	if !ok {
		httpx.Error(w, http.StatusNotFound, "not_found", "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
