package documents

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/swipetonpro/backend/internal/httpx"
	"github.com/swipetonpro/backend/internal/middleware"
)

type UploadRequest struct {
	DocType  string `json:"doc_type"`
	FileName string `json:"filename"`
	Content  string `json:"content"` // base64
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

// Upload handles POST /documents.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	if req.FileName == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "missing filename")
		return
	}
	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "content must be base64")
		return
	}
	doc, err := h.svc.Upload(r.Context(), u, req.DocType, req.FileName, content)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAPro):
			httpx.Error(w, http.StatusForbidden, "forbidden", "only professionals upload documents")
		case errors.Is(err, ErrInvalidDocType), errors.Is(err, ErrEmptyDocument):
			httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
		case errors.Is(err, ErrDocumentTooBig):
			httpx.Error(w, http.StatusRequestEntityTooLarge, "too_large", "document exceeds the size limit")
		default:
			h.log.Error("document upload failed", "owner_id", u.ID, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

// ListOwn handles GET /documents.
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	docs, err := h.svc.ListOwn(r.Context(), u.ID)
	if err != nil {
		h.log.Error("list documents failed", "owner_id", u.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}
