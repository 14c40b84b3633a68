package session

import (
	"context"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	context.Context `json:"-"`

	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
	Perms    []string `json:"perms"`
	Roles    []string `json:"roles"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID    types.ID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

func (s *Session) Clone() Session {
	perms := make([]string, len(s.Perms))
	copy(perms, s.Perms)
	roles := make([]string, len(s.Roles))
	copy(roles, s.Roles)
	return Session{Context: s.Context, Token: s.Token, Identity: s.Identity, Perms: perms, Roles: roles,
		SigningTime: s.SigningTime}
}

// Anonymous reports whether no identity has been resolved for the request.
func (s *Session) Anonymous() bool {
	return s == nil || s.Token == "" || s.Identity.ID == 0
}

// ActorID is the id recorded as the author of mutations, 0 for anonymous callers.
func (s *Session) ActorID() types.ID {
	if s.Anonymous() {
		return 0
	}
	return s.Identity.ID
}

func (s *Session) TraceContext() context.Context {
	if s == nil || s.Context == nil {
		return context.Background()
	}
	return s.Context
}
