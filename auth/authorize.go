package auth

import (
	"net/http"

	"github.com/upb/petclinic/models"
)

// Requirement declares who may call an operation.
//
// A public requirement admits everyone. Otherwise the caller must be
// authenticated, and then:
//   - with neither Roles nor OwnerOf, any principal is admitted
//   - with Roles, a principal holding one of them is admitted
//   - with OwnerOf, the principal whose subject equals the identity
//     returned by OwnerOf is admitted
//
// When both Roles and OwnerOf are set either check is sufficient.
type Requirement struct {
	Public  bool
	Roles   []string
	OwnerOf func(r *http.Request) string
}

// Public admits anonymous callers.
func Public() Requirement {
	return Requirement{Public: true}
}

// Authenticated admits any authenticated principal.
func Authenticated() Requirement {
	return Requirement{}
}

// AnyRole admits principals holding one of roles.
func AnyRole(roles ...string) Requirement {
	return Requirement{Roles: append([]string(nil), roles...)}
}

// OrOwner also admits the principal that owns the resource named by fn.
func (req Requirement) OrOwner(fn func(r *http.Request) string) Requirement {
	req.OwnerOf = fn
	return req
}

// Permit decides whether ac satisfies req for request r.
func Permit(ac *Context, req Requirement, r *http.Request) bool {
	if req.Public {
		return true
	}
	if !ac.Authenticated() {
		return false
	}
	if len(req.Roles) == 0 && req.OwnerOf == nil {
		return true
	}
	if len(req.Roles) > 0 && ac.HasAnyRole(req.Roles...) {
		return true
	}
	if req.OwnerOf != nil && r != nil {
		owner := models.NormalizeEmail(req.OwnerOf(r))
		return owner != "" && owner == models.NormalizeEmail(ac.Subject())
	}
	return false
}
