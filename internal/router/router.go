package router

import (
	"net/http"

	"github.com/swipetonpro/backend/internal/admin"
	"github.com/swipetonpro/backend/internal/auth"
	"github.com/swipetonpro/backend/internal/boost"
	"github.com/swipetonpro/backend/internal/chat"
	"github.com/swipetonpro/backend/internal/documents"
	"github.com/swipetonpro/backend/internal/middleware"
	"github.com/swipetonpro/backend/internal/models"
	"github.com/swipetonpro/backend/internal/notification"
	"github.com/swipetonpro/backend/internal/payment"
	"github.com/swipetonpro/backend/internal/swipe"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	Swipe        *swipe.Handler
	Boost        *boost.Handler
	Payment      *payment.Handler
	Chat         *chat.Handler
	Documents    *documents.Handler
	Notification *notification.Handler
	Admin        *admin.Handler
}

// New returns an http.Handler serving the API under /api/v1.
func New(h Handlers, tokens middleware.TokenValidator, users middleware.UserLoader) http.Handler {
	mux := http.NewServeMux()
	const base = "/api/v1"

	authed := middleware.Auth(tokens, users)
	adminOnly := chain(authed, middleware.RequireRole(models.RoleAdmin))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// auth / users
	mux.HandleFunc("POST "+base+"/auth/register", h.Auth.Register)
	mux.HandleFunc("POST "+base+"/auth/login", h.Auth.Login)
	mux.Handle("GET "+base+"/users/me", authed(http.HandlerFunc(h.Auth.Me)))
	mux.HandleFunc("GET "+base+"/users/featured", h.Auth.Featured)

	// swipe/match engine
	mux.Handle("POST "+base+"/swipes", authed(http.HandlerFunc(h.Swipe.Swipe)))
	mux.Handle("GET "+base+"/swipes/deck", authed(http.HandlerFunc(h.Swipe.Deck)))
	mux.Handle("GET "+base+"/swipes/likes", authed(http.HandlerFunc(h.Swipe.Likes)))

	// boosts and credits
	mux.Handle("POST "+base+"/boosts", authed(http.HandlerFunc(h.Boost.Use)))
	mux.Handle("POST "+base+"/credits/purchase", authed(http.HandlerFunc(h.Payment.Purchase)))
	mux.Handle("GET "+base+"/credits/ledger", authed(http.HandlerFunc(h.Payment.Ledger)))

	// matches and messaging
	mux.Handle("GET "+base+"/matches", authed(http.HandlerFunc(h.Chat.ListMatches)))
	mux.Handle("GET "+base+"/matches/{id}/messages", authed(http.HandlerFunc(h.Chat.ListMessages)))
	mux.Handle("POST "+base+"/matches/{id}/messages", authed(http.HandlerFunc(h.Chat.SendMessage)))
	mux.Handle("POST "+base+"/matches/{id}/unlock", authed(http.HandlerFunc(h.Payment.Unlock)))

	// payment provider callback, no auth
	mux.HandleFunc("POST "+base+"/payments/webhook", h.Payment.Webhook)

	// documents
	mux.Handle("POST "+base+"/documents", authed(http.HandlerFunc(h.Documents.Upload)))
	mux.Handle("GET "+base+"/documents", authed(http.HandlerFunc(h.Documents.ListOwn)))

	// notifications
	mux.Handle("GET "+base+"/notifications", authed(http.HandlerFunc(h.Notification.List)))
	mux.Handle("POST "+base+"/notifications/{id}/read", authed(http.HandlerFunc(h.Notification.MarkRead)))

	// reports
	mux.Handle("POST "+base+"/reports", authed(http.HandlerFunc(h.Admin.FileReport)))

	// admin oversight
	mux.Handle("GET "+base+"/admin/users", adminOnly(http.HandlerFunc(h.Admin.ListUsers)))
	mux.Handle("PUT "+base+"/admin/users/{id}/verification-status", adminOnly(http.HandlerFunc(h.Admin.SetVerificationStatus)))
	mux.Handle("POST "+base+"/admin/users/{id}/credits", adminOnly(http.HandlerFunc(h.Admin.AdjustCredits)))
	mux.Handle("GET "+base+"/admin/documents", adminOnly(http.HandlerFunc(h.Admin.ListDocuments)))
	mux.Handle("PUT "+base+"/admin/documents/{id}/review", adminOnly(http.HandlerFunc(h.Admin.ReviewDocument)))
	mux.Handle("GET "+base+"/admin/boost-config", adminOnly(http.HandlerFunc(h.Admin.BoostConfig)))
	mux.Handle("PUT "+base+"/admin/boost-config", adminOnly(http.HandlerFunc(h.Admin.SetBoostConfig)))
	mux.Handle("GET "+base+"/admin/credit-config", adminOnly(http.HandlerFunc(h.Admin.CreditConfig)))
	mux.Handle("PUT "+base+"/admin/credit-config", adminOnly(http.HandlerFunc(h.Admin.SetCreditConfig)))
	mux.Handle("GET "+base+"/admin/reports", adminOnly(http.HandlerFunc(h.Admin.ListReports)))
	mux.Handle("PUT "+base+"/admin/reports/{id}/resolve", adminOnly(http.HandlerFunc(h.Admin.ResolveReport)))
	mux.Handle("GET "+base+"/admin/stats", adminOnly(http.HandlerFunc(h.Admin.Stats)))
	mux.Handle("GET "+base+"/admin/audit-log", adminOnly(http.HandlerFunc(h.Admin.AuditLog)))

	return mux
}

func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
