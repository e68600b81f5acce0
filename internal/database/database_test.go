package database

import (
	"context"
	"os"
	"testing"

	"crewdesk/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL and makes
// sure the tables the test touches exist. Tests that need it are skipped in
// short mode or when the variable is unset.
func setupTestDB(t *testing.T) *Database {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database tests in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db := NewDatabase()
	require.NoError(t, db.Connect(context.Background(), connString))
	t.Cleanup(db.Close)

	_, err := db.Pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS tbl_account (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS tbl_notification (
			id UUID PRIMARY KEY,
			owner_account_id UUID NOT NULL REFERENCES tbl_account(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT 'info',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			action_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	require.NoError(t, err)

	return &db
}

func testAccount(t *testing.T, db *Database, name string) Account {
	t.Helper()

	account, err := db.CreateAccount(context.Background(), CreateAccountParams{
		Name:  name,
		Email: name + "-" + uuid.NewString() + "@example.com",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM tbl_account WHERE id = $1`, account.ID)
	})
	return account
}

func TestMarkNotificationAsRead(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := testAccount(t, db, "owner")
	other := testAccount(t, db, "other")

	notification, err := db.CreateNotification(ctx, CreateNotificationParams{
		OwnerAccountID: owner.ID,
		Title:          "Welcome",
	})
	require.NoError(t, err)

	unread := func(accountID uuid.UUID) []Notification {
		t.Helper()
		list, err := db.ListNotifications(ctx, ListNotificationsParams{
			OwnerAccountID: util.Some(accountID),
			Read:           util.Some(false),
		})
		require.NoError(t, err)
		return list
	}

	t.Run("another account cannot mark it", func(t *testing.T) {
		err := db.MarkNotificationAsRead(ctx, notification.ID, other.ID)
		assert.ErrorIs(t, err, ErrNotificationNotFound)
		assert.Len(t, unread(owner.ID), 1)
	})

	t.Run("unknown notification", func(t *testing.T) {
		err := db.MarkNotificationAsRead(ctx, uuid.New(), owner.ID)
		assert.ErrorIs(t, err, ErrNotificationNotFound)
	})

	t.Run("owner marks it read", func(t *testing.T) {
		require.NoError(t, db.MarkNotificationAsRead(ctx, notification.ID, owner.ID))
		assert.Empty(t, unread(owner.ID))
	})
}
