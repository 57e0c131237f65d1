// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"

	"github.com/contactbook/contactd/internal/auth"
	"github.com/contactbook/contactd/internal/log"
	"github.com/contactbook/contactd/internal/mailer"
	"github.com/contactbook/contactd/internal/metrics"
	"github.com/contactbook/contactd/internal/schemas"
	"github.com/contactbook/contactd/internal/store"
)

// maxAvatarBytes caps avatar upload size.
const maxAvatarBytes = 10 << 20 // 10 MiB

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api.users")

	var creds schemas.UserCredentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	if errs := creds.Validate(); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	hashed, err := auth.HashPassword(creds.Password)
	if err != nil {
		logger.Error().Err(err).Msg("password hashing failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := s.users.Create(r.Context(), creds.Email, hashed)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		logger.Error().Err(err).Msg("user creation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendVerificationMail(r, user.Email)

	logger.Info().
		Str(log.FieldEvent, "user.registered").
		Str(log.FieldUserEmail, user.Email).
		Msg("user registered")

	writeJSON(w, http.StatusCreated, schemas.UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		IsVerified: user.IsVerified,
	})
}

// sendVerificationMail queues a verification mail when outbound mail is
// configured. Failures to mint are logged, never surfaced to the client.
func (s *Server) sendVerificationMail(r *http.Request, email string) {
	if s.mail == nil {
		return
	}
	logger := log.WithComponentFromContext(r.Context(), "api.users")
	token, err := s.tokens.MintVerify(email)
	if err != nil {
		logger.Error().Err(err).Msg("verification token mint failed")
		return
	}
	s.mail.Enqueue(email, mailer.VerificationSubject, mailer.VerificationBody(s.cfg.BaseURL, token))
	logger.Info().
		Str(log.FieldEvent, "user.verification_mail_queued").
		Str(log.FieldUserEmail, email).
		Msg("verification mail queued")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api.users")

	var creds schemas.UserCredentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	if errs := creds.Validate(); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	user, err := s.users.ByEmail(r.Context(), creds.Email)
	if err != nil || !auth.VerifyPassword(creds.Password, user.HashedPassword) {
		metrics.Logins.WithLabelValues("failure").Inc()
		writeUnauthorized(w, "incorrect email or password")
		return
	}

	access, err := s.tokens.MintAccess(user.Email)
	if err != nil {
		logger.Error().Err(err).Msg("access token mint failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	refresh, err := s.tokens.MintRefresh(user.Email)
	if err != nil {
		logger.Error().Err(err).Msg("refresh token mint failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	metrics.Logins.WithLabelValues("success").Inc()
	logger.Info().
		Str(log.FieldEvent, "user.login").
		Str(log.FieldUserEmail, user.Email).
		Msg("user logged in")

	writeJSON(w, http.StatusOK, schemas.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api.users")

	var req schemas.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email, err := s.tokens.Subject(req.RefreshToken)
	if err != nil {
		writeUnauthorized(w, "invalid refresh token")
		return
	}
	user, err := s.users.ByEmail(r.Context(), email)
	if err != nil {
		writeUnauthorized(w, "invalid refresh token")
		return
	}

	access, err := s.tokens.MintAccess(user.Email)
	if err != nil {
		logger.Error().Err(err).Msg("access token mint failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// The refresh token is returned unchanged; rotation is not part of the
	// contract.
	writeJSON(w, http.StatusOK, schemas.Token{
		AccessToken:  access,
		RefreshToken: req.RefreshToken,
		TokenType:    "bearer",
	})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api.users")

	token := r.URL.Query().Get("token")
	email, err := s.tokens.Subject(token)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token")
		return
	}

	if err := s.users.MarkVerified(r.Context(), email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "invalid token")
			return
		}
		logger.Error().Err(err).Msg("mark verified failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info().
		Str(log.FieldEvent, "user.verified").
		Str(log.FieldUserEmail, email).
		Msg("email verified")

	writeJSON(w, http.StatusOK, schemas.Message{Msg: "Email successfully verified"})
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api.users")

	token := auth.ExtractBearer(r)
	if token == "" {
		writeUnauthorized(w, "not authenticated")
		return
	}
	email, err := s.tokens.Subject(token)
	if err != nil {
		writeUnauthorized(w, "could not validate credentials")
		return
	}
	user, err := s.users.ByEmail(r.Context(), email)
	if err != nil {
		writeUnauthorized(w, "could not validate credentials")
		return
	}

	if s.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "avatar storage not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer func() { _ = file.Close() }()

	url, err := s.uploader.Upload(r.Context(), file)
	if err != nil {
		logger.Error().Err(err).Msg("avatar upload failed")
		writeError(w, http.StatusBadGateway, "avatar upload failed")
		return
	}

	if err := s.users.SetAvatarURL(r.Context(), user.Email, url); err != nil {
		logger.Error().Err(err).Msg("avatar url persist failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info().
		Str(log.FieldEvent, "user.avatar_updated").
		Str(log.FieldUserEmail, user.Email).
		Msg("avatar updated")

	writeJSON(w, http.StatusOK, schemas.AvatarResponse{
		Msg:       "Avatar updated",
		AvatarURL: url,
	})
}
