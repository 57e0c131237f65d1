// SPDX-License-Identifier: MIT

package store

import "time"

// DateFormat is the canonical on-disk and wire format for birthdays.
const DateFormat = "2006-01-02"

// Contact is a stored contact row.
type Contact struct {
	ID             int64
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	Birthday       time.Time
	AdditionalInfo *string
}

// User is a stored user row.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	IsVerified     bool
	AvatarURL      *string
}
