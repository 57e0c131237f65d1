// SPDX-License-Identifier: MIT

// Package api provides the HTTP server for the contactd service.
package api

import (
	"time"

	"github.com/contactbook/contactd/internal/auth"
	"github.com/contactbook/contactd/internal/avatar"
	"github.com/contactbook/contactd/internal/cache"
	"github.com/contactbook/contactd/internal/config"
	"github.com/contactbook/contactd/internal/health"
	"github.com/contactbook/contactd/internal/mailer"
	"github.com/contactbook/contactd/internal/store"
)

// Server holds the handler dependencies for the contactd API.
type Server struct {
	cfg      config.Config
	contacts *store.ContactStore
	users    *store.UserStore
	tokens   *auth.Manager
	cache    cache.Cache
	mail     *mailer.Dispatcher // nil disables outbound mail
	uploader avatar.Uploader
	health   *health.Manager

	// avatarDir is non-empty when avatars are stored locally and served
	// from a static route.
	avatarDir string

	// now allows tests to pin the clock for the birthday window.
	now func() time.Time
}

// Deps bundles the dependencies injected into the Server.
type Deps struct {
	Contacts  *store.ContactStore
	Users     *store.UserStore
	Tokens    *auth.Manager
	Cache     cache.Cache
	Mail      *mailer.Dispatcher
	Uploader  avatar.Uploader
	Health    *health.Manager
	AvatarDir string
}

// New creates an API server.
func New(cfg config.Config, deps Deps) *Server {
	c := deps.Cache
	if c == nil {
		c = cache.Disabled{}
	}
	return &Server{
		cfg:       cfg,
		contacts:  deps.Contacts,
		users:     deps.Users,
		tokens:    deps.Tokens,
		cache:     c,
		mail:      deps.Mail,
		uploader:  deps.Uploader,
		health:    deps.Health,
		avatarDir: deps.AvatarDir,
		now:       time.Now,
	}
}
