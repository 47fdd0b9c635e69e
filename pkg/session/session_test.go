package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harrisonrobin/taskdeck/pkg/gateway"
	"github.com/harrisonrobin/taskdeck/pkg/model"
)

const loginOK = `{"token":"tok-1","userId":"u1","name":"Alice","email":"alice@example.com"}`

func newServer(t *testing.T, handler http.Handler) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return gateway.NewClient(srv.URL, time.Second)
}

func TestLoginEstablishesAndPersistsSession(t *testing.T) {
	gw := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginOK)
	}))
	dir := t.TempDir()
	s := NewStore(gw, dir)

	err := s.Login(context.Background(), model.LoginData{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !s.IsAuthenticated() {
		t.Fatal("session not authenticated after login")
	}
	if s.Token() != "tok-1" || s.User().ID != "u1" || s.User().Name != "Alice" {
		t.Errorf("unexpected session state: token=%q user=%+v", s.Token(), s.User())
	}

	for _, file := range []string{TokenFile, UserFile} {
		if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
			t.Errorf("expected %s to be persisted: %v", file, err)
		}
	}

	// A second store over the same dir restores the session. The token is
	// opaque (not a JWT), so identity comes from the cached user file.
	restored := NewStore(gw, dir)
	restored.Restore(context.Background())
	if !restored.IsAuthenticated() {
		t.Fatal("restored session not authenticated")
	}
	if restored.User().ID != "u1" || restored.Token() != "tok-1" {
		t.Errorf("restored wrong identity: %+v", restored.User())
	}
}

func TestLoginRejectsInvalidServerResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing token", `{"userId":"u1","name":"Alice"}`},
		{"missing userId", `{"token":"tok-1","name":"Alice"}`},
		{"empty token", `{"token":"","userId":"u1"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			s := NewStore(gw, t.TempDir())

			err := s.Login(context.Background(), model.LoginData{Email: "a", Password: "b"})
			if !errors.Is(err, ErrInvalidServerResponse) {
				t.Errorf("got %v, want ErrInvalidServerResponse", err)
			}
			if s.IsAuthenticated() {
				t.Error("session authenticated despite invalid response")
			}
		})
	}
}

func TestFailedLoginLeavesExistingSessionAlone(t *testing.T) {
	good := true
	gw := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if good {
			fmt.Fprint(w, loginOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid credentials"}`)
	}))
	s := NewStore(gw, t.TempDir())

	ctx := context.Background()
	if err := s.Login(ctx, model.LoginData{Email: "a", Password: "b"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	good = false
	var apiErr *gateway.APIError
	err := s.Login(ctx, model.LoginData{Email: "a", Password: "wrong"})
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("got %v, want a 401 APIError", err)
	}
	if !s.IsAuthenticated() || s.Token() != "tok-1" {
		t.Error("failed re-login disturbed the existing session")
	}
}

func TestRegisterThenLogin(t *testing.T) {
	loginFails := false
	gw := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/register":
			fmt.Fprint(w, `{"userId":"u1"}`)
		case "/users/login":
			if loginFails {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message":"login exploded"}`)
				return
			}
			fmt.Fprint(w, loginOK)
		}
	}))
	s := NewStore(gw, t.TempDir())

	ctx := context.Background()
	data := model.RegisterData{Name: "Alice", Email: "alice@example.com", Password: "pw"}
	if err := s.Register(ctx, data); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !s.IsAuthenticated() {
		t.Error("session not established after register")
	}

	// The account exists but the immediate login fails: the whole thing is
	// reported as a registration failure instead of being swallowed.
	s.Logout()
	loginFails = true
	err := s.Register(ctx, data)
	if err == nil {
		t.Fatal("expected Register to surface the login failure")
	}
	if s.IsAuthenticated() {
		t.Error("session established despite failed post-register login")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	gw := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginOK)
	}))
	dir := t.TempDir()
	s := NewStore(gw, dir)

	if err := s.Login(context.Background(), model.LoginData{Email: "a", Password: "b"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	s.Logout()

	if s.IsAuthenticated() || s.Token() != "" || s.User() != nil {
		t.Error("in-memory session survived logout")
	}
	for _, file := range []string{TokenFile, UserFile} {
		if _, err := os.Stat(filepath.Join(dir, file)); !os.IsNotExist(err) {
			t.Errorf("%s survived logout", file)
		}
	}

	// Logging out twice is harmless.
	s.Logout()
}

func TestRestoreResolvesIdentityFromTokenClaims(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u7",
		"name":   "Bob",
		"email":  "bob@example.com",
	}).SignedString([]byte("server-side-secret"))
	if err != nil {
		t.Fatalf("could not build test token: %v", err)
	}

	dir := t.TempDir()
	tokenJSON := fmt.Sprintf(`{"access_token":%q}`, token)
	if err := os.WriteFile(filepath.Join(dir, TokenFile), []byte(tokenJSON), 0600); err != nil {
		t.Fatal(err)
	}

	gw := newServer(t, http.NotFoundHandler())
	s := NewStore(gw, dir)
	s.Restore(context.Background())

	if !s.IsAuthenticated() {
		t.Fatal("session not restored from token claims")
	}
	if s.User().ID != "u7" || s.User().Name != "Bob" {
		t.Errorf("restored identity %+v, want u7/Bob", s.User())
	}
}

func TestRestoreDiscardsUnusableToken(t *testing.T) {
	dir := t.TempDir()
	// Not a JWT, and no cached identity file to fall back to.
	if err := os.WriteFile(filepath.Join(dir, TokenFile), []byte(`{"access_token":"opaque-junk"}`), 0600); err != nil {
		t.Fatal(err)
	}

	gw := newServer(t, http.NotFoundHandler())
	s := NewStore(gw, dir)
	s.Restore(context.Background())

	if s.IsAuthenticated() {
		t.Error("session restored from an unresolvable token")
	}
	if _, err := os.Stat(filepath.Join(dir, TokenFile)); !os.IsNotExist(err) {
		t.Error("unusable stored token was not discarded")
	}
}

func TestRestoreWithNoStoredToken(t *testing.T) {
	gw := newServer(t, http.NotFoundHandler())
	s := NewStore(gw, t.TempDir())
	s.Restore(context.Background())

	if s.IsAuthenticated() {
		t.Error("session authenticated out of thin air")
	}
}

func TestUnauthorizedResponseClearsSession(t *testing.T) {
	gw := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/login" {
			fmt.Fprint(w, loginOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"token expired"}`)
	}))
	dir := t.TempDir()
	s := NewStore(gw, dir)

	ctx := context.Background()
	if err := s.Login(ctx, model.LoginData{Email: "a", Password: "b"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Any authenticated call bouncing with 401 tears the session down.
	if _, err := gw.GetTasks(ctx, s.Token(), nil); err == nil {
		t.Fatal("expected the task fetch to fail")
	}
	if s.IsAuthenticated() {
		t.Error("session survived a 401 on an authenticated call")
	}
	if _, err := os.Stat(filepath.Join(dir, TokenFile)); !os.IsNotExist(err) {
		t.Error("persisted token survived a 401")
	}
}
