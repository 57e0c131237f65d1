// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicateEmail is returned on a unique email constraint violation.
	ErrDuplicateEmail = errors.New("store: email already exists")
	// ErrDuplicatePhone is returned on a unique phone constraint violation.
	ErrDuplicatePhone = errors.New("store: phone number already exists")
)

// mapConstraintErr converts SQLite unique-constraint failures into typed
// sentinel errors. The modernc driver surfaces the violated column in the
// error text.
func mapConstraintErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return err
	}
	switch {
	case strings.Contains(msg, ".email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, ".phone_number"):
		return ErrDuplicatePhone
	}
	return err
}
