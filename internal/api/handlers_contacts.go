// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/contactbook/contactd/internal/log"
	"github.com/contactbook/contactd/internal/metrics"
	"github.com/contactbook/contactd/internal/schemas"
	"github.com/contactbook/contactd/internal/store"
)

func contactKey(id int64) string {
	return "contact:" + strconv.FormatInt(id, 10)
}

func (s *Server) birthdaysKey() string {
	return "birthdays:" + s.now().Format("2006-01-02")
}

// invalidateContact drops cache entries a contact write may have staled.
func (s *Server) invalidateContact(id int64) {
	if id != 0 {
		s.cache.Delete(contactKey(id))
	}
	s.cache.Delete(s.birthdaysKey())
}

func contactIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "contactID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "contact id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api.contacts")

	var payload schemas.ContactPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	birthday, errs := payload.Validate()
	if errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	created, err := s.contacts.Create(r.Context(), payload.ToModel(birthday))
	if err != nil {
		s.writeContactStoreError(w, r, err)
		return
	}

	s.invalidateContact(0)
	metrics.ContactsCreated.Inc()
	logger.Info().
		Str(log.FieldEvent, "contact.created").
		Int64(log.FieldContactID, created.ID).
		Msg("contact created")

	writeJSON(w, http.StatusCreated, schemas.NewContactResponse(created))
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 10)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	contacts, err := s.contacts.List(r.Context(), skip, limit)
	if err != nil {
		s.writeContactStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schemas.NewContactResponses(contacts))
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactIDParam(w, r)
	if !ok {
		return
	}

	if cached, hit := s.cache.Get(contactKey(id)); hit {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	contact, err := s.contacts.Get(r.Context(), id)
	if err != nil {
		s.writeContactStoreError(w, r, err)
		return
	}

	resp := schemas.NewContactResponse(contact)
	if body, err := json.Marshal(resp); err == nil {
		s.cache.Set(contactKey(id), body, s.cfg.CacheTTL)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactIDParam(w, r)
	if !ok {
		return
	}

	var payload schemas.ContactPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	birthday, errs := payload.Validate()
	if errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	updated, err := s.contacts.Update(r.Context(), id, payload.ToModel(birthday))
	if err != nil {
		s.writeContactStoreError(w, r, err)
		return
	}

	s.invalidateContact(id)
	writeJSON(w, http.StatusOK, schemas.NewContactResponse(updated))
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api.contacts")

	id, ok := contactIDParam(w, r)
	if !ok {
		return
	}

	deleted, err := s.contacts.Delete(r.Context(), id)
	if err != nil {
		s.writeContactStoreError(w, r, err)
		return
	}

	s.invalidateContact(id)
	metrics.ContactsDeleted.Inc()
	logger.Info().
		Str(log.FieldEvent, "contact.deleted").
		Int64(log.FieldContactID, id).
		Msg("contact deleted")

	writeJSON(w, http.StatusOK, schemas.NewContactResponse(deleted))
}

func (s *Server) handleSearchContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contacts, err := s.contacts.Search(r.Context(), q.Get("name"), q.Get("surname"), q.Get("email"))
	if err != nil {
		s.writeContactStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schemas.NewContactResponses(contacts))
}

func (s *Server) handleUpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	key := s.birthdaysKey()
	if cached, hit := s.cache.Get(key); hit {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	contacts, err := s.contacts.UpcomingBirthdays(r.Context(), s.now())
	if err != nil {
		s.writeContactStoreError(w, r, err)
		return
	}

	resp := schemas.NewContactResponses(contacts)
	if body, err := json.Marshal(resp); err == nil {
		s.cache.Set(key, body, s.cfg.CacheTTL)
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeContactStoreError maps store errors onto HTTP responses.
func (s *Server) writeContactStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "contact not found")
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email already exists")
	case errors.Is(err, store.ErrDuplicatePhone):
		writeError(w, http.StatusConflict, "phone number already exists")
	default:
		logger := log.WithComponentFromContext(r.Context(), "api.contacts")
		logger.Error().Err(err).Msg("contact store operation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
