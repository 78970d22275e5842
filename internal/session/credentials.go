package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkstone-site/inkstone/internal/domain"
)

var ErrBadCredentials = errors.New("session: invalid username or password")

// Credential is one row of the static staff credential table. Secret is
// the per-actor signing secret mixed into the token MAC; PasswordHash is
// a bcrypt hash checked at login.
type Credential struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	Roles        []string `json:"roles"`
	Secret       string   `json:"secret"`
	PasswordHash string   `json:"password_hash"`
}

// Table holds the parsed credential table, indexed for token verification
// and login.
type Table struct {
	byID       map[string]*Credential
	byUsername map[string]*Credential
}

// ParseTable parses the STAFF_CREDENTIALS JSON document.
func ParseTable(raw string) (*Table, error) {
	t := &Table{
		byID:       make(map[string]*Credential),
		byUsername: make(map[string]*Credential),
	}
	if strings.TrimSpace(raw) == "" {
		return t, nil
	}
	var creds []*Credential
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	for i, cred := range creds {
		if cred.ID == "" || cred.Username == "" || cred.Secret == "" || cred.PasswordHash == "" {
			return nil, fmt.Errorf("parse credentials: entry %d is missing required fields", i)
		}
		for _, raw := range cred.Roles {
			if _, err := domain.ParseRole(raw); err != nil {
				return nil, fmt.Errorf("parse credentials: entry %d: %w", i, err)
			}
		}
		if _, dup := t.byID[cred.ID]; dup {
			return nil, fmt.Errorf("parse credentials: duplicate id %q", cred.ID)
		}
		if _, dup := t.byUsername[cred.Username]; dup {
			return nil, fmt.Errorf("parse credentials: duplicate username %q", cred.Username)
		}
		t.byID[cred.ID] = cred
		t.byUsername[cred.Username] = cred
	}
	return t, nil
}

// Lookup resolves a credential by actor ID. Satisfies LookupFunc.
func (t *Table) Lookup(actorID string) (*Credential, bool) {
	cred, ok := t.byID[actorID]
	return cred, ok
}

// Authenticate verifies a username/password pair against the table.
// Failures are uniform: an unknown username and a wrong password produce
// the same error.
func (t *Table) Authenticate(username, password string) (*Credential, error) {
	cred, ok := t.byUsername[username]
	if !ok {
		// Burn comparable time so username probing reveals nothing.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return cred, nil
}

// Empty reports whether the table has no credentials, which disables the
// moderation surface entirely.
func (t *Table) Empty() bool {
	return len(t.byID) == 0
}
