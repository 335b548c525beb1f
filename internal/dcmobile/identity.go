package dcmobile

import (
	"strings"
	"unicode/utf8"
)

// Identity is who authors a mutation: either Member or Guest.
type Identity interface {
	identity()
}

// Member authors with a logged-in Session. Its cookies are the only credential.
type Member struct {
	Session *Session
}

// Guest authors without a session, protected by a nickname/password pair.
type Guest struct {
	Nickname string
	Password string
}

func (Member) identity() {}
func (Guest) identity()  {}

func (g Guest) Validate() error {
	if strings.TrimSpace(g.Nickname) == "" {
		return invalid("nickname", "nickname required")
	}
	if g.Password == "" {
		return invalid("password", "password required")
	}
	if utf8.RuneCountInString(g.Password) < 2 {
		return invalid("password", "password must be at least 2 characters")
	}
	if strings.TrimSpace(g.Password) != g.Password {
		return invalid("password", "password must not start or end with whitespace")
	}
	return nil
}

func (m Member) Validate() error {
	if m.Session == nil {
		return invalid("session", "member session required")
	}
	return nil
}

func validateIdentity(id Identity) error {
	switch v := id.(type) {
	case Member:
		return v.Validate()
	case *Member:
		if v == nil {
			return invalid("identity", "identity required")
		}
		return v.Validate()
	case Guest:
		return v.Validate()
	case *Guest:
		if v == nil {
			return invalid("identity", "identity required")
		}
		return v.Validate()
	case nil:
		return invalid("identity", "identity required")
	}
	return invalid("identity", "unknown identity %T", id)
}

// guestOf returns the guest credentials if id is a Guest.
func guestOf(id Identity) (Guest, bool) {
	switch v := id.(type) {
	case Guest:
		return v, true
	case *Guest:
		return *v, true
	}
	return Guest{}, false
}

func memberOf(id Identity) (Member, bool) {
	switch v := id.(type) {
	case Member:
		return v, true
	case *Member:
		return *v, true
	}
	return Member{}, false
}
