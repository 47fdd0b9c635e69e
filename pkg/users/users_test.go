package users

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harrisonrobin/taskdeck/pkg/gateway"
	"github.com/harrisonrobin/taskdeck/pkg/model"
	"github.com/harrisonrobin/taskdeck/pkg/session"
)

func newDirectory(t *testing.T) (*Directory, *int) {
	t.Helper()

	singleFetches := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"token":"tok-1","userId":"u1","name":"Alice","email":"alice@example.com"}`)
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"u1","name":"Alice","email":"alice@example.com","role":0,"isActive":true},
			{"id":"u2","name":"Bob","email":"bob@example.com","role":1,"isActive":true}]`)
	})
	mux.HandleFunc("/users/u3", func(w http.ResponseWriter, r *http.Request) {
		singleFetches++
		fmt.Fprint(w, `{"id":"u3","name":"Carol","email":"carol@example.com","role":0,"isActive":true}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	gw := gateway.NewClient(srv.URL, time.Second)
	sess := session.NewStore(gw, t.TempDir())
	if err := sess.Login(context.Background(), model.LoginData{Email: "alice@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return NewDirectory(gw, sess), &singleFetches
}

func TestDisplayName(t *testing.T) {
	d, _ := newDirectory(t)
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	id := "u2"
	if got := d.DisplayName(&id); got != "Bob" {
		t.Errorf("DisplayName(u2) = %q, want Bob", got)
	}

	// Unresolved references render a fallback label instead of failing.
	ghost := "u99"
	if got := d.DisplayName(&ghost); got != UnknownUserLabel {
		t.Errorf("DisplayName(u99) = %q, want %q", got, UnknownUserLabel)
	}
	if got := d.DisplayName(nil); got != "unassigned" {
		t.Errorf("DisplayName(nil) = %q, want unassigned", got)
	}
}

func TestGetUserByIDFetchesOnMiss(t *testing.T) {
	d, fetches := newDirectory(t)
	ctx := context.Background()

	u, err := d.GetUserByID(ctx, "u3")
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if u.Name != "Carol" {
		t.Errorf("fetched user %+v, want Carol", u)
	}

	// Second lookup is served from the directory.
	if _, err := d.GetUserByID(ctx, "u3"); err != nil {
		t.Fatalf("second GetUserByID failed: %v", err)
	}
	if *fetches != 1 {
		t.Errorf("expected 1 gateway fetch, got %d", *fetches)
	}
}
