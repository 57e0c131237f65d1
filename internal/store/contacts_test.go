// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*ContactStore, *UserStore) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath, DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return NewContactStore(db), NewUserStore(db)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(DateFormat, s)
	require.NoError(t, err)
	return parsed
}

func testContact(t *testing.T, email, phone string) Contact {
	return Contact{
		FirstName:   "John",
		LastName:    "Doe",
		Email:       email,
		PhoneNumber: phone,
		Birthday:    date(t, "1990-01-01"),
	}
}

func TestContactStore_CreateAndGet(t *testing.T) {
	contacts, _ := newTestDB(t)
	ctx := context.Background()

	info := "likes cats"
	in := testContact(t, "johndoe@example.com", "1234567890")
	in.AdditionalInfo = &info

	created, err := contacts.Create(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := contacts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", got.FirstName)
	assert.Equal(t, "johndoe@example.com", got.Email)
	assert.Equal(t, "1990-01-01", got.Birthday.Format(DateFormat))
	require.NotNil(t, got.AdditionalInfo)
	assert.Equal(t, "likes cats", *got.AdditionalInfo)
}

func TestContactStore_GetNotFound(t *testing.T) {
	contacts, _ := newTestDB(t)

	_, err := contacts.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactStore_DuplicateEmailAndPhone(t *testing.T) {
	contacts, _ := newTestDB(t)
	ctx := context.Background()

	_, err := contacts.Create(ctx, testContact(t, "johndoe@example.com", "1234567890"))
	require.NoError(t, err)

	_, err = contacts.Create(ctx, testContact(t, "johndoe@example.com", "0000000000"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = contacts.Create(ctx, testContact(t, "other@example.com", "1234567890"))
	assert.ErrorIs(t, err, ErrDuplicatePhone)
}

func TestContactStore_ListPagination(t *testing.T) {
	contacts, _ := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c := testContact(t,
			string(rune('a'+i))+"@example.com",
			string(rune('0'+i))+"23456789")
		_, err := contacts.Create(ctx, c)
		require.NoError(t, err)
	}

	page, err := contacts.List(ctx, 0, 3)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	rest, err := contacts.List(ctx, 3, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Greater(t, rest[0].ID, page[2].ID)
}

func TestContactStore_Update(t *testing.T) {
	contacts, _ := newTestDB(t)
	ctx := context.Background()

	created, err := contacts.Create(ctx, testContact(t, "johndoe@example.com", "1234567890"))
	require.NoError(t, err)

	in := created
	in.FirstName = "John Updated"
	updated, err := contacts.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "John Updated", updated.FirstName)
	assert.Equal(t, created.ID, updated.ID)

	_, err = contacts.Update(ctx, 9999, in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactStore_Delete(t *testing.T) {
	contacts, _ := newTestDB(t)
	ctx := context.Background()

	created, err := contacts.Create(ctx, testContact(t, "johndoe@example.com", "1234567890"))
	require.NoError(t, err)

	deleted, err := contacts.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", deleted.FirstName)

	_, err = contacts.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = contacts.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactStore_Search(t *testing.T) {
	contacts, _ := newTestDB(t)
	ctx := context.Background()

	john := testContact(t, "johndoe@example.com", "1234567890")
	_, err := contacts.Create(ctx, john)
	require.NoError(t, err)

	jane := Contact{
		FirstName:   "Jane",
		LastName:    "Smith",
		Email:       "janesmith@example.com",
		PhoneNumber: "0987654321",
		Birthday:    date(t, "1991-02-02"),
	}
	_, err = contacts.Create(ctx, jane)
	require.NoError(t, err)

	byName, err := contacts.Search(ctx, "john", "", "")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "John", byName[0].FirstName)

	bySurname, err := contacts.Search(ctx, "", "smith", "")
	require.NoError(t, err)
	require.Len(t, bySurname, 1)
	assert.Equal(t, "Jane", bySurname[0].FirstName)

	byEmail, err := contacts.Search(ctx, "", "", "example.com")
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)

	all, err := contacts.Search(ctx, "", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestContactStore_UpcomingBirthdays(t *testing.T) {
	contacts, _ := newTestDB(t)
	ctx := context.Background()

	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	inWindow := testContact(t, "soon@example.com", "1111111111")
	inWindow.Birthday = date(t, "1990-06-15")
	_, err := contacts.Create(ctx, inWindow)
	require.NoError(t, err)

	today := testContact(t, "today@example.com", "2222222222")
	today.Birthday = date(t, "1985-06-10")
	_, err = contacts.Create(ctx, today)
	require.NoError(t, err)

	outside := testContact(t, "later@example.com", "3333333333")
	outside.Birthday = date(t, "1990-07-01")
	_, err = contacts.Create(ctx, outside)
	require.NoError(t, err)

	upcoming, err := contacts.UpcomingBirthdays(ctx, now)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)

	emails := []string{upcoming[0].Email, upcoming[1].Email}
	assert.Contains(t, emails, "soon@example.com")
	assert.Contains(t, emails, "today@example.com")
}

func TestContactStore_UpcomingBirthdaysLeapDay(t *testing.T) {
	contacts, _ := newTestDB(t)
	ctx := context.Background()

	leapling := testContact(t, "leapling@example.com", "5555555555")
	leapling.Birthday = date(t, "1992-02-29")
	_, err := contacts.Create(ctx, leapling)
	require.NoError(t, err)

	// 2026 is not a leap year; the Feb 25 .. Mar 4 window skips 02-29 on
	// the calendar but must still match the leap-day birthday.
	now := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
	upcoming, err := contacts.UpcomingBirthdays(ctx, now)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "leapling@example.com", upcoming[0].Email)

	// A window starting after the boundary does not match.
	now = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	upcoming, err = contacts.UpcomingBirthdays(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}

func TestContactStore_UpcomingBirthdaysYearWrap(t *testing.T) {
	contacts, _ := newTestDB(t)
	ctx := context.Background()

	// Window Dec 30 .. Jan 6 must match a January birthday from any year.
	now := time.Date(2026, 12, 30, 0, 0, 0, 0, time.UTC)

	newYear := testContact(t, "newyear@example.com", "4444444444")
	newYear.Birthday = date(t, "1990-01-02")
	_, err := contacts.Create(ctx, newYear)
	require.NoError(t, err)

	upcoming, err := contacts.UpcomingBirthdays(ctx, now)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "newyear@example.com", upcoming[0].Email)
}
