package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/plant-care/internal/credential"
)

var (
	// ErrNoSession is returned when nobody is signed in.
	ErrNoSession = errors.New("no active session")

	// ErrNotSignedIn guards operations that need a signed-in user.
	ErrNotSignedIn = errors.New("sign in to continue")
)

// SessionStore persists the current session in the keyring.
type SessionStore struct {
	creds *credential.Store
	now   func() time.Time
}

// NewSessionStore returns a SessionStore backed by creds.
func NewSessionStore(creds *credential.Store) *SessionStore {
	return &SessionStore{creds: creds, now: time.Now}
}

// Save stores s as the current session.
func (s *SessionStore) Save(sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return s.creds.Set(credential.KeySession, string(data))
}

// Load returns the current session. Missing, unreadable and expired
// sessions all report ErrNoSession.
func (s *SessionStore) Load() (*Session, error) {
	raw, err := s.creds.Get(credential.KeySession)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, ErrNoSession
	}
	if sess.IDToken == "" || sess.Expired(s.now()) {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Clear signs the user out.
func (s *SessionStore) Clear() error {
	return s.creds.Delete(credential.KeySession)
}

// Token returns the current ID token, or "" when signed out. It matches
// api.TokenFunc.
func (s *SessionStore) Token(context.Context) (string, error) {
	sess, err := s.Load()
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return "", nil
		}
		return "", err
	}
	return sess.IDToken, nil
}

// RequireUser returns the signed-in user or ErrNotSignedIn.
func (s *SessionStore) RequireUser() (*User, error) {
	sess, err := s.Load()
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, ErrNotSignedIn
		}
		return nil, err
	}
	return &sess.User, nil
}
