package auth

import "context"

type contextKey struct{}

var anonymous = &Context{}

// Context is the authentication state of one request. It is built once by
// the authentication middleware and never mutated afterwards.
type Context struct {
	principal *Principal
}

// NewContext returns an authenticated context for p. The principal is
// copied so later changes to p cannot leak into the request.
func NewContext(p *Principal) *Context {
	if p == nil {
		return anonymous
	}
	return &Context{principal: p.clone()}
}

// Anonymous returns the context of a request without a principal.
func Anonymous() *Context {
	return anonymous
}

// Authenticated reports whether a principal is installed.
func (c *Context) Authenticated() bool {
	return c != nil && c.principal != nil
}

// Subject returns the principal's subject or "" when anonymous.
func (c *Context) Subject() string {
	if !c.Authenticated() {
		return ""
	}
	return c.principal.Subject
}

// Principal returns a copy of the installed principal, or nil.
func (c *Context) Principal() *Principal {
	if !c.Authenticated() {
		return nil
	}
	return c.principal.clone()
}

// Roles returns a copy of the principal's roles.
func (c *Context) Roles() []string {
	if !c.Authenticated() {
		return nil
	}
	return append([]string(nil), c.principal.Roles...)
}

// HasAnyRole reports whether the principal holds one of roles.
func (c *Context) HasAnyRole(roles ...string) bool {
	return c.Authenticated() && c.principal.HasAnyRole(roles...)
}

// WithContext stores ac in ctx.
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// FromContext returns the authentication context stored in ctx, or the
// anonymous context when none was installed.
func FromContext(ctx context.Context) *Context {
	if ac, ok := ctx.Value(contextKey{}).(*Context); ok && ac != nil {
		return ac
	}
	return anonymous
}
