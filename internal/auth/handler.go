package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/swipetonpro/backend/internal/httpx"
	"github.com/swipetonpro/backend/internal/middleware"
	"github.com/swipetonpro/backend/internal/models"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Trade       string `json:"trade,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	DisplayName        string    `json:"display_name"`
	Role               string    `json:"role"`
	Trade              string    `json:"trade,omitempty"`
	VerificationStatus string    `json:"verification_status,omitempty"`
	Credits            int       `json:"credits"`
	Featured           bool      `json:"featured"`
	CreatedAt          time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token string `json:"token"`
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" || req.DisplayName == "" || req.Role == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "missing required fields")
		return
	}
	u, err := h.svc.Register(r.Context(), req.Email, req.Password, req.DisplayName, req.Role, req.Trade)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			httpx.Error(w, http.StatusConflict, "email_taken", "email already registered")
		case errors.Is(err, ErrInvalidRole):
			httpx.Error(w, http.StatusBadRequest, "invalid_input", "role must be seeker or professional")
		default:
			h.log.Error("register failed", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal", "registration failed")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, UserToResponse(u))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "missing email or password")
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Error(w, http.StatusUnauthorized, "invalid_credentials", "incorrect email or password")
			return
		}
		h.log.Error("login failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "login failed")
		return
	}
	httpx.JSON(w, http.StatusOK, LoginResponse{Token: token})
}

// Me returns the authenticated user's own profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	httpx.JSON(w, http.StatusOK, UserToResponse(u))
}

// Featured returns the homepage's featured profile, or null.
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.FeaturedUser(r.Context())
	if err != nil {
		h.log.Error("featured user lookup failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal", "")
		return
	}
	if u == nil {
		httpx.JSON(w, http.StatusOK, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, UserToResponse(u))
}

// UserToResponse converts a user model into its public JSON shape.
func UserToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                 u.ID.String(),
		Email:              u.Email,
		DisplayName:        u.DisplayName,
		Role:               u.Role,
		Trade:              u.Trade,
		VerificationStatus: u.VerificationStatus,
		Credits:            u.Credits,
		Featured:           u.Featured,
		CreatedAt:          u.CreatedAt,
	}
}
