// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ContactStore provides contact persistence on top of *sql.DB.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore creates a ContactStore.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

const contactColumns = "id, first_name, last_name, email, phone_number, birthday, additional_info"

func scanContact(row interface{ Scan(...any) error }) (Contact, error) {
	var (
		c        Contact
		birthday string
		info     sql.NullString
	)
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &birthday, &info); err != nil {
		return Contact{}, err
	}
	parsed, err := time.Parse(DateFormat, birthday)
	if err != nil {
		return Contact{}, fmt.Errorf("store: malformed birthday %q: %w", birthday, err)
	}
	c.Birthday = parsed
	if info.Valid {
		c.AdditionalInfo = &info.String
	}
	return c, nil
}

func nullableInfo(info *string) any {
	if info == nil {
		return nil
	}
	return *info
}

// Create inserts a new contact and returns it with its assigned ID.
func (s *ContactStore) Create(ctx context.Context, c Contact) (Contact, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (first_name, last_name, email, phone_number, birthday, additional_info)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday.Format(DateFormat), nullableInfo(c.AdditionalInfo))
	if err != nil {
		return Contact{}, mapConstraintErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Contact{}, fmt.Errorf("store: last insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

// Get returns the contact with the given ID, or ErrNotFound.
func (s *ContactStore) Get(ctx context.Context, id int64) (Contact, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = ?", id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	if err != nil {
		return Contact{}, fmt.Errorf("store: get contact %d: %w", id, err)
	}
	return c, nil
}

// List returns contacts with pagination.
func (s *ContactStore) List(ctx context.Context, skip, limit int) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+contactColumns+" FROM contacts ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, fmt.Errorf("store: list contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectContacts(rows)
}

// Update replaces all mutable fields of the contact with the given ID.
// Returns the updated contact, or ErrNotFound.
func (s *ContactStore) Update(ctx context.Context, id int64, c Contact) (Contact, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts
		 SET first_name = ?, last_name = ?, email = ?, phone_number = ?, birthday = ?, additional_info = ?
		 WHERE id = ?`,
		c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday.Format(DateFormat), nullableInfo(c.AdditionalInfo), id)
	if err != nil {
		return Contact{}, mapConstraintErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Contact{}, fmt.Errorf("store: rows affected: %w", err)
	}
	if affected == 0 {
		return Contact{}, ErrNotFound
	}
	c.ID = id
	return c, nil
}

// Delete removes the contact with the given ID and returns the deleted row,
// or ErrNotFound.
func (s *ContactStore) Delete(ctx context.Context, id int64) (Contact, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Contact{}, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", id); err != nil {
		return Contact{}, fmt.Errorf("store: delete contact %d: %w", id, err)
	}
	return c, nil
}

// Search returns contacts whose first name, last name or email contains the
// given substrings (case-insensitive). Empty criteria are ignored; with no
// criteria at all, every contact matches.
func (s *ContactStore) Search(ctx context.Context, name, surname, email string) ([]Contact, error) {
	var (
		where []string
		args  []any
	)
	if name != "" {
		where = append(where, "first_name LIKE ? COLLATE NOCASE")
		args = append(args, "%"+name+"%")
	}
	if surname != "" {
		where = append(where, "last_name LIKE ? COLLATE NOCASE")
		args = append(args, "%"+surname+"%")
	}
	if email != "" {
		where = append(where, "email LIKE ? COLLATE NOCASE")
		args = append(args, "%"+email+"%")
	}

	query := "SELECT " + contactColumns + " FROM contacts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectContacts(rows)
}

// UpcomingBirthdays returns contacts whose birthday (month and day) falls
// within the next week starting at now, inclusive of both endpoints. The
// comparison wraps across year boundaries.
func (s *ContactStore) UpcomingBirthdays(ctx context.Context, now time.Time) ([]Contact, error) {
	const windowDays = 7

	placeholders := make([]string, 0, windowDays+2)
	args := make([]any, 0, windowDays+2)
	days := make(map[string]bool, windowDays+2)
	for i := 0; i <= windowDays; i++ {
		day := now.AddDate(0, 0, i).Format("01-02")
		days[day] = true
		placeholders = append(placeholders, "?")
		args = append(args, day)
	}
	// A non-leap February has no 29th, so the window jumps from 02-28 to
	// 03-01. Leap-day birthdays still belong to a window that crosses
	// that boundary.
	if days["02-28"] && days["03-01"] && !days["02-29"] {
		placeholders = append(placeholders, "?")
		args = append(args, "02-29")
	}

	query := "SELECT " + contactColumns + " FROM contacts WHERE strftime('%m-%d', birthday) IN (" +
		strings.Join(placeholders, ",") + ") ORDER BY strftime('%m-%d', birthday)"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: upcoming birthdays: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectContacts(rows)
}

func collectContacts(rows *sql.Rows) ([]Contact, error) {
	contacts := make([]Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate contacts: %w", err)
	}
	return contacts, nil
}
