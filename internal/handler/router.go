package handler

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aryan0dhankhar/meetlog/internal/security/middleware"
	"github.com/aryan0dhankhar/meetlog/internal/security/ratelimit"
)

// Router wires handlers to routes.
type Router struct {
	Auth     *AuthHandler
	Contacts *ContactHandler
	Cards    *CardHandler
	Members  *MemberHandler
	Health   *HealthHandler

	Resolver     middleware.MemberResolver
	LoginLimiter *ratelimit.Limiter
	APILimiter   *ratelimit.Limiter
	Proxies      *middleware.TrustedProxies
	Logger       *slog.Logger
}

// Mux returns the route table. Protected routes resolve the acting member
// first, so API throttling is keyed per member.
func (rt *Router) Mux() *http.ServeMux {
	logger := rt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	requireMember := middleware.RequireMember(rt.Resolver, logger)
	apiLimit := middleware.RateLimit(rt.APILimiter, rt.Proxies, logger)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireMember(apiLimit(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.Health.Health)
	mux.HandleFunc("GET /readyz", rt.Health.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /api/auth/login", middleware.RateLimit(rt.LoginLimiter, rt.Proxies, logger)(http.HandlerFunc(rt.Auth.Login)))
	mux.HandleFunc("POST /api/auth/logout", rt.Auth.Logout)
	mux.Handle("GET /api/auth/me", protected(rt.Auth.Me))
	mux.Handle("POST /api/auth/password", protected(rt.Auth.ChangePassword))

	mux.Handle("POST /api/contacts", protected(rt.Contacts.Create))
	mux.Handle("GET /api/contacts/drafts", protected(rt.Contacts.Drafts))
	mux.Handle("GET /api/contacts/history", protected(rt.Contacts.History))
	mux.Handle("POST /api/contacts/search", protected(rt.Contacts.Search))
	mux.Handle("POST /api/contacts/summarize", protected(rt.Contacts.Summarize))
	mux.Handle("GET /api/contacts/{id}", protected(rt.Contacts.Get))
	mux.Handle("PUT /api/contacts/{id}", protected(rt.Contacts.Update))
	mux.Handle("DELETE /api/contacts/{id}", protected(rt.Contacts.Delete))

	mux.Handle("POST /api/cards", protected(rt.Cards.Create))
	mux.Handle("GET /api/cards", protected(rt.Cards.List))
	mux.Handle("POST /api/cards/search", protected(rt.Cards.Search))
	mux.Handle("GET /api/cards/{id}", protected(rt.Cards.Get))

	mux.Handle("GET /api/members", protected(rt.Members.List))
	mux.Handle("POST /api/members/search", protected(rt.Members.Search))
	mux.Handle("GET /api/members/{id}", protected(rt.Members.Get))

	return mux
}
