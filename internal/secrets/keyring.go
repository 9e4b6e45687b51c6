package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app’s secrets in the OS keychain.
	KeyringService = "jobsync"
)

var ErrNotSignedIn = errors.New("not signed in")

// Store is the slice of the keychain API used here. go-keyring's package
// functions satisfy it through Keyring.
type Store interface {
	Get(service, user string) (string, error)
	Set(service, user, secret string) error
	Delete(service, user string) error
}

// Keyring delegates to the OS keychain.
type Keyring struct{}

func (Keyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }
func (Keyring) Set(service, user, secret string) error   { return keyring.Set(service, user, secret) }
func (Keyring) Delete(service, user string) error        { return keyring.Delete(service, user) }

func passwordAccount(email string) string {
	return fmt.Sprintf("jobsync:password:%s", strings.ToLower(strings.TrimSpace(email)))
}

func tokenAccount(email string) string {
	return fmt.Sprintf("jobsync:token:%s", strings.ToLower(strings.TrimSpace(email)))
}

func GetPassword(s Store, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("email is empty")
	}
	pw, err := s.Get(KeyringService, passwordAccount(email))
	if err != nil || strings.TrimSpace(pw) == "" {
		return "", errors.New("backend password not found (set it via /api/secrets/backend)")
	}
	return pw, nil
}

func SetPassword(s Store, email, password string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return s.Set(KeyringService, passwordAccount(email), password)
}

func SetToken(s Store, email, token string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return s.Set(KeyringService, tokenAccount(email), token)
}

// SignOut drops both the token and the password for email.
func SignOut(s Store, email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is empty")
	}
	errT := s.Delete(KeyringService, tokenAccount(email))
	errP := s.Delete(KeyringService, passwordAccount(email))
	if errors.Is(errT, keyring.ErrNotFound) {
		errT = nil
	}
	if errors.Is(errP, keyring.ErrNotFound) {
		errP = nil
	}
	return errors.Join(errT, errP)
}

// Tokens is anything that can hand out the backend auth token.
type Tokens interface {
	Token(ctx context.Context) (string, error)
}

// KeyringTokens reads the token stored for Email.
type KeyringTokens struct {
	Store Store
	Email string
}

func (k KeyringTokens) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(k.Email) == "" {
		return "", ErrNotSignedIn
	}
	s := k.Store
	if s == nil {
		s = Keyring{}
	}
	tok, err := s.Get(KeyringService, tokenAccount(k.Email))
	if err != nil || strings.TrimSpace(tok) == "" {
		return "", ErrNotSignedIn
	}
	return tok, nil
}

// StaticToken serves a fixed token, e.g. from JOBSYNC_API_TOKEN.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrNotSignedIn
	}
	return string(s), nil
}
