// Package auth signs users in against an external identity provider and
// keeps the resulting session in the keyring.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// User is the signed-in identity.
type User struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// Session is a signed-in user with the tokens issued by the provider.
type Session struct {
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	User         User      `json:"user"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the session token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Provider is an identity provider supporting email/password accounts.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, name, email, password, photoURL string) (*Session, error)
}

// ProviderError is a rejection reported by the identity provider.
type ProviderError struct {
	Code string
}

func (e *ProviderError) Error() string {
	switch e.Code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return "invalid email or password"
	case "EMAIL_EXISTS":
		return "an account with this email already exists"
	case "USER_DISABLED":
		return "this account has been disabled"
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return "too many attempts, try again later"
	}
	return "identity provider error: " + e.Code
}

// ErrWeakPassword is returned by ValidatePassword.
var ErrWeakPassword = errors.New("password must be at least 6 characters and contain an upper-case and a lower-case letter")

// ValidatePassword applies the registration password policy.
func ValidatePassword(pw string) error {
	var upper, lower bool
	for _, r := range pw {
		upper = upper || unicode.IsUpper(r)
		lower = lower || unicode.IsLower(r)
	}
	if len([]rune(pw)) < 6 || !upper || !lower {
		return ErrWeakPassword
	}
	return nil
}

// IdentityClient talks to an Identity Toolkit compatible REST endpoint.
type IdentityClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

// NewIdentityClient creates a client for endpoint
// (e.g. https://identitytoolkit.googleapis.com/v1) using apiKey.
func NewIdentityClient(endpoint, apiKey string) *IdentityClient {
	return &IdentityClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

var _ Provider = (*IdentityClient)(nil)

type tokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (c *IdentityClient) session(r tokenResponse) *Session {
	s := &Session{
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		User: User{
			UID:      r.LocalID,
			Name:     r.DisplayName,
			Email:    r.Email,
			PhotoURL: r.PhotoURL,
		},
	}
	if secs, err := strconv.Atoi(r.ExpiresIn); err == nil && secs > 0 {
		s.ExpiresAt = c.now().Add(time.Duration(secs) * time.Second)
	}
	return s
}

// SignIn exchanges an email and password for a session.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var res tokenResponse
	err := c.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &res)
	if err != nil {
		return nil, err
	}
	return c.session(res), nil
}

// SignUp creates an account and sets its display name and photo.
func (c *IdentityClient) SignUp(ctx context.Context, name, email, password, photoURL string) (*Session, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	var res tokenResponse
	err := c.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &res)
	if err != nil {
		return nil, err
	}

	var profile tokenResponse
	err = c.call(ctx, "accounts:update", map[string]any{
		"idToken":           res.IDToken,
		"displayName":       name,
		"photoUrl":          photoURL,
		"returnSecureToken": false,
	}, &profile)
	if err != nil {
		return nil, fmt.Errorf("setting profile: %w", err)
	}

	s := c.session(res)
	s.User.Name = name
	s.User.PhotoURL = photoURL
	return s, nil
}

func (c *IdentityClient) call(ctx context.Context, method string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	u := c.endpoint + "/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			// Messages look like "WEAK_PASSWORD : Password should be ..."
			code, _, _ := strings.Cut(apiErr.Error.Message, " ")
			return &ProviderError{Code: code}
		}
		return fmt.Errorf("unexpected status %d on %s: %s", resp.StatusCode, method, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s: %w", method, err)
	}
	return nil
}
