package auth

import (
	"context"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/credential"
)

func TestSessionStore(t *testing.T) {
	creds := credential.NewStore(keyring.NewArrayKeyring(nil))
	store := NewSessionStore(creds)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = store.RequireUser()
	assert.ErrorIs(t, err, ErrNotSignedIn)
	token, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save(&Session{
		IDToken:   "tok",
		User:      User{UID: "u1", Email: "sam@example.com"},
		ExpiresAt: now.Add(time.Hour),
	}))

	u, err := store.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", u.Email)
	token, err = store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	now = now.Add(2 * time.Hour)
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Clear())
	require.NoError(t, creds.Set(credential.KeySession, "garbage"))
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}
