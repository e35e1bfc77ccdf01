// Package auth holds the request principal, the resolver that loads it
// from the identity store and the authorization decision made against it.
package auth

import "strings"

// Principal is an identity as the identity store knows it.
type Principal struct {
	Subject      string
	PasswordHash string
	Roles        []string
	Enabled      bool
}

// HasAnyRole reports whether the principal holds at least one of roles.
// Role names compare case-insensitively.
func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range p.Roles {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

func (p *Principal) clone() *Principal {
	c := *p
	c.Roles = append([]string(nil), p.Roles...)
	return &c
}
