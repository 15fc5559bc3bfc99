package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/swipetonpro/backend/internal/auth"
	"github.com/swipetonpro/backend/internal/documents"
	"github.com/swipetonpro/backend/internal/httpx"
	"github.com/swipetonpro/backend/internal/ledger"
	"github.com/swipetonpro/backend/internal/middleware"
)

type SetStatusRequest struct {
	Status string `json:"status"`
}

type ReviewDocumentRequest struct {
	Decision string `json:"decision"` // approve | reject
	Comment  string `json:"comment"`
}

type BoostConfigRequest struct {
	Cost    int  `json:"cost"`
	Enabled bool `json:"enabled"`
}

type CreditConfigRequest struct {
	UnitPriceCents int    `json:"unit_price_cents"`
	Label          string `json:"label"`
}

type FileReportRequest struct {
	ReportedID string `json:"reported_id"`
	Reason     string `json:"reason"`
}

type ResolveReportRequest struct {
	Resolution string `json:"resolution"` // resolve | dismiss
	Note       string `json:"note"`
}

type AdjustCreditsRequest struct {
	Delta int `json:"delta"`
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

// ListUsers handles GET /admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	users, err := h.svc.ListUsers(r.Context(), UserFilter{
		Role:   q.Get("role"),
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.log.Error("list users failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	out := make([]auth.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, auth.UserToResponse(u))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// SetVerificationStatus handles PUT /admin/users/{id}/verification-status.
func (h *Handler) SetVerificationStatus(w http.ResponseWriter, r *http.Request) {
	adminUser := middleware.UserFromCtx(r.Context())
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid user id")
		return
	}
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	err = h.svc.SetVerificationStatus(r.Context(), adminUser.ID, userID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			httpx.Error(w, http.StatusBadRequest, "invalid_input", "status must be pending, active or rejected")
		case errors.Is(err, ErrUserNotFound):
			httpx.Error(w, http.StatusNotFound, "not_found", "professional not found")
		default:
			h.log.Error("set verification status failed", "user_id", userID, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal", "")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments handles GET /admin/documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	docs, err := h.svc.ListDocuments(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		h.log.Error("list documents failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// ReviewDocument handles PUT /admin/documents/{id}/review.
func (h *Handler) ReviewDocument(w http.ResponseWriter, r *http.Request) {
	adminUser := middleware.UserFromCtx(r.Context())
	docID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid document id")
		return
	}
	var req ReviewDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	if req.Decision != "approve" && req.Decision != "reject" {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "decision must be approve or reject")
		return
	}
	doc, err := h.svc.ReviewDocument(r.Context(), adminUser.ID, docID, req.Decision == "approve", req.Comment)
	if err != nil {
		h.writeDocError(w, docID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// BoostConfig handles GET /admin/boost-config.
func (h *Handler) BoostConfig(w http.ResponseWriter, r *http.Request) {
	proID, err := optionalProID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid pro_id")
		return
	}
	cfg, err := h.svc.BoostConfig(r.Context(), proID)
	if err != nil {
		h.log.Error("get boost config failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

// SetBoostConfig handles PUT /admin/boost-config.
func (h *Handler) SetBoostConfig(w http.ResponseWriter, r *http.Request) {
	adminUser := middleware.UserFromCtx(r.Context())
	proID, err := optionalProID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid pro_id")
		return
	}
	var req BoostConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	cfg, err := h.svc.SetBoostConfig(r.Context(), adminUser.ID, proID, req.Cost, req.Enabled)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		h.log.Error("set boost config failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

// CreditConfig handles GET /admin/credit-config.
func (h *Handler) CreditConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.CreditConfig(r.Context())
	if err != nil {
		h.log.Error("get credit config failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

// SetCreditConfig handles PUT /admin/credit-config.
func (h *Handler) SetCreditConfig(w http.ResponseWriter, r *http.Request) {
	adminUser := middleware.UserFromCtx(r.Context())
	var req CreditConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	cfg, err := h.svc.SetCreditConfig(r.Context(), adminUser.ID, req.UnitPriceCents, req.Label)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		h.log.Error("set credit config failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

// FileReport handles POST /reports (any authenticated user).
func (h *Handler) FileReport(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	var req FileReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	reportedID, err := uuid.Parse(req.ReportedID)
	if err != nil || req.Reason == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "missing reported_id or reason")
		return
	}
	rep, err := h.svc.FileReport(r.Context(), u.ID, reportedID, req.Reason)
	if err != nil {
		h.log.Error("file report failed", "reporter_id", u.ID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, rep)
}

// ListReports handles GET /admin/reports.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reports, err := h.svc.ListReports(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		h.log.Error("list reports failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, reports)
}

// ResolveReport handles PUT /admin/reports/{id}/resolve.
func (h *Handler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	adminUser := middleware.UserFromCtx(r.Context())
	reportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid report id")
		return
	}
	var req ResolveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	if req.Resolution != "resolve" && req.Resolution != "dismiss" {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "resolution must be resolve or dismiss")
		return
	}
	rep, err := h.svc.ResolveReport(r.Context(), adminUser.ID, reportID, req.Resolution == "dismiss", req.Note)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			httpx.Error(w, http.StatusNotFound, "not_found", "report not found or already closed")
			return
		}
		h.log.Error("resolve report failed", "report_id", reportID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

// AdjustCredits handles POST /admin/users/{id}/credits.
func (h *Handler) AdjustCredits(w http.ResponseWriter, r *http.Request) {
	adminUser := middleware.UserFromCtx(r.Context())
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid user id")
		return
	}
	var req AdjustCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	balance, err := h.svc.AdjustCredits(r.Context(), adminUser.ID, userID, req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, ErrZeroAdjustment):
			httpx.Error(w, http.StatusBadRequest, "invalid_input", "delta must be non-zero")
		case errors.Is(err, ledger.ErrInsufficientCredits):
			httpx.Error(w, http.StatusConflict, "insufficient_credits", "account cannot go below zero")
		default:
			h.log.Error("adjust credits failed", "user_id", userID, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"balance": balance})
}

// Stats handles GET /admin/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.log.Error("stats failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

// AuditLog handles GET /admin/audit-log.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := AuditFilter{Action: q.Get("action")}
	if raw := q.Get("admin_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid admin_id")
			return
		}
		f.AdminID = &id
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	entries, err := h.svc.AuditLog(r.Context(), f)
	if err != nil {
		h.log.Error("audit log query failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) writeDocError(w http.ResponseWriter, docID uuid.UUID, err error) {
	switch {
	case errors.Is(err, documents.ErrDocNotFound):
		httpx.Error(w, http.StatusNotFound, "not_found", "document not found")
	case errors.Is(err, documents.ErrAlreadyReviewed):
		httpx.Error(w, http.StatusConflict, "already_reviewed", "document already reviewed")
	default:
		h.log.Error("review document failed", "document_id", docID, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
	}
}

func optionalProID(r *http.Request) (*uuid.UUID, error) {
	raw := r.URL.Query().Get("pro_id")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
