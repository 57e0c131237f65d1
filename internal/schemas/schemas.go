// SPDX-License-Identifier: MIT

// Package schemas defines the request and response payloads of the contactd API.
package schemas

import (
	"net/mail"
	"strings"
	"time"

	"github.com/contactbook/contactd/internal/store"
)

// ContactPayload is the request body for creating or updating a contact.
type ContactPayload struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	PhoneNumber    string  `json:"phone_number"`
	Birthday       string  `json:"birthday"` // 2006-01-02
	AdditionalInfo *string `json:"additional_info,omitempty"`
}

// FieldError describes a single invalid payload field.
type FieldError struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// ValidationErrors is the 422 response body for invalid payloads.
type ValidationErrors struct {
	Errors []FieldError `json:"detail"`
}

func (v *ValidationErrors) add(field, detail string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Detail: detail})
}

// Empty reports whether any field errors were collected.
func (v *ValidationErrors) Empty() bool { return len(v.Errors) == 0 }

// Validate checks the payload and returns the parsed birthday on success.
func (p *ContactPayload) Validate() (time.Time, *ValidationErrors) {
	var errs ValidationErrors

	if strings.TrimSpace(p.FirstName) == "" {
		errs.add("first_name", "must not be empty")
	}
	if strings.TrimSpace(p.LastName) == "" {
		errs.add("last_name", "must not be empty")
	}
	if !validEmail(p.Email) {
		errs.add("email", "must be a valid email address")
	}
	if strings.TrimSpace(p.PhoneNumber) == "" {
		errs.add("phone_number", "must not be empty")
	}

	birthday, err := time.Parse(store.DateFormat, p.Birthday)
	if err != nil {
		errs.add("birthday", "must be a date in format YYYY-MM-DD")
	}

	if !errs.Empty() {
		return time.Time{}, &errs
	}
	return birthday, nil
}

// ToModel converts a validated payload into a store model.
func (p *ContactPayload) ToModel(birthday time.Time) store.Contact {
	return store.Contact{
		FirstName:      strings.TrimSpace(p.FirstName),
		LastName:       strings.TrimSpace(p.LastName),
		Email:          strings.TrimSpace(p.Email),
		PhoneNumber:    strings.TrimSpace(p.PhoneNumber),
		Birthday:       birthday,
		AdditionalInfo: p.AdditionalInfo,
	}
}

// ContactResponse is the wire representation of a contact.
type ContactResponse struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	PhoneNumber    string  `json:"phone_number"`
	Birthday       string  `json:"birthday"`
	AdditionalInfo *string `json:"additional_info"`
}

// NewContactResponse converts a store model into its wire representation.
func NewContactResponse(c store.Contact) ContactResponse {
	return ContactResponse{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		PhoneNumber:    c.PhoneNumber,
		Birthday:       c.Birthday.Format(store.DateFormat),
		AdditionalInfo: c.AdditionalInfo,
	}
}

// NewContactResponses converts a slice of store models.
func NewContactResponses(contacts []store.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, NewContactResponse(c))
	}
	return out
}

// UserCredentials is the request body for registration and login.
type UserCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the credentials payload.
func (u *UserCredentials) Validate() *ValidationErrors {
	var errs ValidationErrors
	if !validEmail(u.Email) {
		errs.add("email", "must be a valid email address")
	}
	if u.Password == "" {
		errs.add("password", "must not be empty")
	}
	if errs.Empty() {
		return nil
	}
	return &errs
}

// Token is the authentication token envelope.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the wire representation of a user.
type UserResponse struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

// Message is a generic informational response.
type Message struct {
	Msg string `json:"msg"`
}

// AvatarResponse is returned after a successful avatar upload.
type AvatarResponse struct {
	Msg       string `json:"msg"`
	AvatarURL string `json:"avatar_url"`
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
