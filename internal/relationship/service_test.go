package relationship

import (
	"fmt"
	"testing"

	"socialite/backend/internal/database"
	"socialite/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s/test.db?_busy_timeout=5000", t.TempDir())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) uint {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func usernames(users []models.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names
}

func TestSendRequest(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, svc.SendRequest(alice, bob))

	sent, err := svc.RequestsSent(alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, usernames(sent))

	received, err := svc.RequestsReceived(bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(received))

	friends, err := svc.Friends(alice)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestSendRequestRejections(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	t.Run("self request", func(t *testing.T) {
		assert.ErrorIs(t, svc.SendRequest(alice, alice), ErrSelfRequest)
	})

	t.Run("unknown target", func(t *testing.T) {
		assert.ErrorIs(t, svc.SendRequest(alice, 9999), ErrUserNotFound)
	})

	t.Run("unknown sender", func(t *testing.T) {
		assert.ErrorIs(t, svc.SendRequest(9999, bob), ErrUserNotFound)
	})

	t.Run("duplicate request", func(t *testing.T) {
		require.NoError(t, svc.SendRequest(alice, bob))
		assert.ErrorIs(t, svc.SendRequest(alice, bob), ErrRequestAlreadySent)
	})

	t.Run("already friends", func(t *testing.T) {
		require.NoError(t, svc.AcceptRequest(bob, alice))
		assert.ErrorIs(t, svc.SendRequest(alice, bob), ErrAlreadyFriends)
		assert.ErrorIs(t, svc.SendRequest(bob, alice), ErrAlreadyFriends)
	})
}

func TestAcceptRequest(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, svc.SendRequest(alice, bob))
	require.NoError(t, svc.AcceptRequest(bob, alice))

	aliceFriends, err := svc.Friends(alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, usernames(aliceFriends))

	bobFriends, err := svc.Friends(bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(bobFriends))

	sent, err := svc.RequestsSent(alice)
	require.NoError(t, err)
	assert.Empty(t, sent)

	received, err := svc.RequestsReceived(bob)
	require.NoError(t, err)
	assert.Empty(t, received)
}

func TestAcceptWithoutPendingRequest(t *testing.T) {
	// Accepting from a user who never asked still creates the friendship;
	// only the requester's existence is checked.
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, svc.AcceptRequest(bob, alice))

	friends, err := svc.Friends(bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(friends))

	assert.ErrorIs(t, svc.AcceptRequest(bob, 9999), ErrUserNotFound)
}

func TestAcceptRequestSelf(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")

	assert.ErrorIs(t, svc.AcceptRequest(alice, alice), ErrSelfRequest)
}

func TestAcceptClearsMutualPending(t *testing.T) {
	// Two crossed requests both disappear when either side accepts, so the
	// pair is never pending and friends at once.
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, svc.SendRequest(alice, bob))
	require.NoError(t, svc.SendRequest(bob, alice))

	// Mutual pending is preserved, not auto-reconciled.
	friends, err := svc.Friends(alice)
	require.NoError(t, err)
	assert.Empty(t, friends)

	require.NoError(t, svc.AcceptRequest(bob, alice))

	for _, id := range []uint{alice, bob} {
		sent, err := svc.RequestsSent(id)
		require.NoError(t, err)
		assert.Empty(t, sent)

		received, err := svc.RequestsReceived(id)
		require.NoError(t, err)
		assert.Empty(t, received)
	}

	friends, err = svc.Friends(alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, usernames(friends))
}

func TestRemoveOrDecline(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	t.Run("cancels a sent request", func(t *testing.T) {
		require.NoError(t, svc.SendRequest(alice, bob))
		require.NoError(t, svc.RemoveOrDecline(alice, bob))

		sent, err := svc.RequestsSent(alice)
		require.NoError(t, err)
		assert.Empty(t, sent)
	})

	t.Run("declines a received request", func(t *testing.T) {
		require.NoError(t, svc.SendRequest(alice, bob))
		require.NoError(t, svc.RemoveOrDecline(bob, alice))

		received, err := svc.RequestsReceived(bob)
		require.NoError(t, err)
		assert.Empty(t, received)
	})

	t.Run("unfriends", func(t *testing.T) {
		require.NoError(t, svc.SendRequest(alice, bob))
		require.NoError(t, svc.AcceptRequest(bob, alice))
		require.NoError(t, svc.RemoveOrDecline(alice, bob))

		friends, err := svc.Friends(bob)
		require.NoError(t, err)
		assert.Empty(t, friends)
	})

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, svc.RemoveOrDecline(alice, bob))
		require.NoError(t, svc.RemoveOrDecline(alice, bob))
	})

	t.Run("unknown other user", func(t *testing.T) {
		assert.ErrorIs(t, svc.RemoveOrDecline(alice, 9999), ErrUserNotFound)
	})
}

func TestFullLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, svc.SendRequest(alice, bob))
	assert.ErrorIs(t, svc.SendRequest(alice, bob), ErrRequestAlreadySent)
	require.NoError(t, svc.AcceptRequest(bob, alice))

	aliceFriends, err := svc.Friends(alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, usernames(aliceFriends))

	bobFriends, err := svc.Friends(bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(bobFriends))

	require.NoError(t, svc.RemoveOrDecline(alice, bob))

	aliceFriends, err = svc.Friends(alice)
	require.NoError(t, err)
	assert.Empty(t, aliceFriends)

	bobFriends, err = svc.Friends(bob)
	require.NoError(t, err)
	assert.Empty(t, bobFriends)
}

func TestEdgeStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	status, err := svc.EdgeStatus(alice, bob)
	require.NoError(t, err)
	assert.Nil(t, status)

	require.NoError(t, svc.SendRequest(alice, bob))

	status, err = svc.EdgeStatus(alice, bob)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusPending, *status)
}

func TestUserExists(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	alice := createUser(t, db, "alice")

	exists, err := svc.UserExists(alice)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.UserExists(9999)
	require.NoError(t, err)
	assert.False(t, exists)
}
