// Package users keeps a directory of known users so task views can resolve
// assignee ids to display names.
package users

import (
	"context"
	"sync"

	"github.com/harrisonrobin/taskdeck/pkg/cache"
	"github.com/harrisonrobin/taskdeck/pkg/gateway"
	"github.com/harrisonrobin/taskdeck/pkg/model"
	"github.com/harrisonrobin/taskdeck/pkg/session"
)

// UnknownUserLabel is rendered for an assignee reference the directory
// cannot resolve. An unresolved reference is tolerated, not an error: the
// referenced user may simply not be fetched yet.
const UnknownUserLabel = "unknown user"

type Directory struct {
	gw      *gateway.Client
	session *session.Store

	mu   sync.RWMutex
	byID map[string]model.User
	list []model.User
}

func NewDirectory(gw *gateway.Client, sess *session.Store) *Directory {
	return &Directory{gw: gw, session: sess, byID: make(map[string]model.User)}
}

// Refresh fetches the full user collection.
func (d *Directory) Refresh(ctx context.Context) error {
	if !d.session.IsAuthenticated() {
		return cache.ErrNoSession
	}

	users, err := d.gw.GetUsers(ctx, d.session.Token())
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.list = users
	d.byID = make(map[string]model.User, len(users))
	for _, u := range users {
		d.byID[u.ID] = u
	}
	return nil
}

// Users returns a copy of the known user list.
func (d *Directory) Users() []model.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.User, len(d.list))
	copy(out, d.list)
	return out
}

// GetUserByID resolves a user, fetching it from the gateway when the
// directory has not seen it yet.
func (d *Directory) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	d.mu.RLock()
	u, ok := d.byID[id]
	d.mu.RUnlock()
	if ok {
		return &u, nil
	}

	if !d.session.IsAuthenticated() {
		return nil, cache.ErrNoSession
	}

	fetched, err := d.gw.GetUserByID(ctx, d.session.Token(), id)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.byID[fetched.ID] = *fetched
	d.mu.Unlock()
	return fetched, nil
}

// DisplayName renders an assignee reference: the user's name when known, a
// fallback label otherwise. A nil id means unassigned.
func (d *Directory) DisplayName(id *string) string {
	if id == nil || *id == "" {
		return "unassigned"
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if u, ok := d.byID[*id]; ok {
		return u.Name
	}
	return UnknownUserLabel
}
