package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/harrisonrobin/taskdeck/pkg/model"
)

const (
	// TokenFile holds the bearer token between runs, stored as an
	// oauth2.Token so the file stays compatible with standard tooling.
	TokenFile = "token.json"

	// UserFile caches the minimal identity so a restart can resolve the
	// user even when the token payload carries no claims.
	UserFile = "user.json"
)

func (s *Store) tokenPath() string {
	return filepath.Join(s.dir, TokenFile)
}

func (s *Store) userPath() string {
	return filepath.Join(s.dir, UserFile)
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open token file for writing: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func userFromFile(path string) (*model.User, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	user := &model.User{}
	if err := json.NewDecoder(f).Decode(user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user from file %s: %w", path, err)
	}
	return user, nil
}

func saveUser(path string, user *model.User) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open user file for writing: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(user)
}
