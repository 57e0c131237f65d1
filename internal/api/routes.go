// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contactbook/contactd/internal/api/middleware"
)

// Handler builds the full route tree with the canonical middleware stack.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		AllowedOrigins:       s.cfg.AllowedOrigins,
		EnableMetrics:        true,
		EnableLogging:        true,
		RateLimitEnabled:     s.cfg.RateLimitEnabled,
		APIRequestsPerMinute: s.cfg.APIRateLimit,
	})

	r.Route("/contacts", func(r chi.Router) {
		// Static segments are registered alongside the {contactID}
		// wildcard; chi prefers the static match, so /search and
		// /birthdays are reachable.
		if s.cfg.RateLimitEnabled {
			r.With(middleware.CreateRateLimit(s.cfg.CreateRateLimit)).Post("/", s.handleCreateContact)
		} else {
			r.Post("/", s.handleCreateContact)
		}
		r.Get("/", s.handleListContacts)
		r.Get("/search", s.handleSearchContacts)
		r.Get("/birthdays", s.handleUpcomingBirthdays)

		r.Post("/register", s.handleRegister)
		r.Post("/token", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/verify", s.handleVerifyEmail)
		r.Put("/avatar", s.handleUpdateAvatar)

		r.Get("/{contactID}", s.handleGetContact)
		r.Put("/{contactID}", s.handleUpdateContact)
		r.Delete("/{contactID}", s.handleDeleteContact)
	})

	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}
	if s.cfg.MetricsAddr == "" {
		r.Handle("/metrics", promhttp.Handler())
	}
	if s.avatarDir != "" {
		fs := http.StripPrefix("/avatars/", http.FileServer(http.Dir(s.avatarDir)))
		r.Get("/avatars/*", fs.ServeHTTP)
	}

	return r
}
