package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/harrisonrobin/taskdeck/pkg/gateway"
	"github.com/harrisonrobin/taskdeck/pkg/model"
)

// ErrInvalidServerResponse is returned when the login endpoint answers
// without both a token and a user id.
var ErrInvalidServerResponse = errors.New("invalid server response")

// Store owns the current authenticated identity and its bearer token. One
// logical session exists per process and its operations are not re-entrant,
// so there is no lock here; the persisted files are written before the
// in-memory fields flip, and both fields flip together.
type Store struct {
	gw  *gateway.Client
	dir string

	user  *model.User
	token string
}

// NewStore wires a session store over the gateway. dir is where the token
// and cached identity are persisted. The store registers itself as the
// gateway's 401 hook: a rejected credential on any authenticated call tears
// the session down.
func NewStore(gw *gateway.Client, dir string) *Store {
	s := &Store{gw: gw, dir: dir}
	gw.SetUnauthorizedHook(s.Logout)
	return s
}

func (s *Store) User() *model.User { return s.user }
func (s *Store) Token() string     { return s.token }

func (s *Store) IsAuthenticated() bool {
	return s.user != nil && s.token != ""
}

// Login authenticates against the gateway and establishes the session. A
// response missing the token or the user id is a server-contract violation;
// the session stays unauthenticated in that case.
func (s *Store) Login(ctx context.Context, data model.LoginData) error {
	resp, err := s.gw.Login(ctx, data)
	if err != nil {
		return err
	}
	if resp.Token == "" || resp.UserID == "" {
		return ErrInvalidServerResponse
	}

	user := &model.User{
		ID:        resp.UserID,
		Name:      resp.Name,
		Email:     resp.Email,
		Role:      model.RoleUser,
		IsActive:  true,
		CreatedAt: model.NewTimestamp(time.Now()),
	}

	if err := saveToken(s.tokenPath(), &oauth2.Token{AccessToken: resp.Token}); err != nil {
		log.Printf("Warning: could not persist session token: %v", err)
	}
	if err := saveUser(s.userPath(), user); err != nil {
		log.Printf("Warning: could not persist user identity: %v", err)
	}

	s.user = user
	s.token = resp.Token
	return nil
}

// Register creates the account and immediately logs in with the same
// credentials. If that login fails the account still exists on the server,
// but the whole operation is reported as a registration failure.
func (s *Store) Register(ctx context.Context, data model.RegisterData) error {
	userID, err := s.gw.Register(ctx, data)
	if err != nil {
		return err
	}
	if userID == "" {
		return ErrInvalidServerResponse
	}

	if err := s.Login(ctx, model.LoginData{Email: data.Email, Password: data.Password}); err != nil {
		return fmt.Errorf("account created but sign-in failed: %w", err)
	}
	return nil
}

// Logout clears the in-memory session and the persisted files. It never
// fails: a file that cannot be removed only earns a warning.
func (s *Store) Logout() {
	s.user = nil
	s.token = ""

	for _, path := range []string{s.tokenPath(), s.userPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: could not remove %s: %v", path, err)
		}
	}
}

// Restore loads a persisted token on startup and resolves the user behind
// it: first from the token's own claims, then from the cached identity file.
// When neither works the stored token is discarded and the process starts
// unauthenticated. Restore itself never fails the caller.
func (s *Store) Restore(ctx context.Context) {
	tok, err := tokenFromFile(s.tokenPath())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not read stored token: %v", err)
		}
		return
	}
	if tok.AccessToken == "" {
		return
	}

	user, ok := identityFromToken(tok.AccessToken)
	if !ok {
		user, err = userFromFile(s.userPath())
		if err != nil {
			log.Printf("Warning: stored token unusable, starting unauthenticated: %v", err)
			s.Logout()
			return
		}
	}

	s.user = user
	s.token = tok.AccessToken
}

// identityFromToken recovers the minimal identity from the JWT payload. The
// signature is not checked: the server remains the authority, this is only a
// convenience so a restart needs no extra round trip.
func identityFromToken(token string) (*model.User, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}

	id, _ := claims["userId"].(string)
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	if id == "" || name == "" {
		return nil, false
	}

	return &model.User{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      model.RoleUser,
		IsActive:  true,
		CreatedAt: model.NewTimestamp(time.Now()),
	}, true
}
