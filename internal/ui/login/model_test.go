package login

import (
	"context"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/auth"
	"github.com/nhle/plant-care/internal/credential"
)

type fakeProvider struct {
	signIns, signUps int
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (*auth.Session, error) {
	f.signIns++
	if password != "Secret1" {
		return nil, &auth.ProviderError{Code: "INVALID_PASSWORD"}
	}
	return &auth.Session{IDToken: "tok", User: auth.User{UID: "u1", Email: email}}, nil
}

func (f *fakeProvider) SignUp(_ context.Context, name, email, _, photoURL string) (*auth.Session, error) {
	f.signUps++
	return &auth.Session{IDToken: "tok", User: auth.User{UID: "u2", Name: name, Email: email, PhotoURL: photoURL}}, nil
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{}

	sess, err := Authenticate(ctx, p, false, "", "sam@example.com", "Secret1", "")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", sess.User.Email)

	_, err = Authenticate(ctx, p, true, "Sam", "sam@example.com", "weak", "")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
	assert.Equal(t, 0, p.signUps, "policy checked before the provider")

	sess, err = Authenticate(ctx, p, true, " Sam ", "sam@example.com", "Secret1", "")
	require.NoError(t, err)
	assert.Equal(t, "Sam", sess.User.Name)
}

func TestSubmitSavesSession(t *testing.T) {
	sessions := auth.NewSessionStore(credential.NewStore(keyring.NewArrayKeyring(nil)))
	m := New(&fakeProvider{}, sessions, 80, 24)
	m.Start(false)
	m.fb.email = "sam@example.com"
	m.fb.password = "Secret1"

	msg := m.submit()()
	in, ok := msg.(LoggedInMsg)
	require.True(t, ok)
	assert.Equal(t, "tok", in.Session.IDToken)

	u, err := sessions.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", u.Email)
}

func TestSubmitFailureRestartsForm(t *testing.T) {
	sessions := auth.NewSessionStore(credential.NewStore(keyring.NewArrayKeyring(nil)))
	m := New(&fakeProvider{}, sessions, 80, 24)
	m.Start(false)
	m.fb.email = "sam@example.com"
	m.fb.password = "nope"

	msg := m.submit()()
	m, _ = m.Update(msg)
	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "invalid email or password")
	assert.Equal(t, "sam@example.com", m.fb.email, "email kept for the retry")
	assert.Empty(t, m.fb.password)
}
