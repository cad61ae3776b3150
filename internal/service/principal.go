// Package service implements the core operations of the record store:
// identity and tenant context, the schema registry, the record store, the
// query pipeline and the audit log. Handlers stay thin; every authorization
// and tenant-scoping decision is made here.
package service

import (
	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/shared"
)

// Principal is the resolved identity of an authenticated caller. A nil
// *Principal means the request is anonymous.
type Principal struct {
	UserID   uint
	TenantID uint
	Role     model.Role
}

// authorize is the single authorization guard applied before every operation
// body. It requires an authenticated principal holding at least the given
// role within its tenant: admin outranks editor outranks viewer.
func authorize(p *Principal, required model.Role) error {
	if p == nil {
		return shared.ErrorAuthenticationRequired
	}
	switch required {
	case model.RoleAdmin:
		if !p.Role.IsAdmin() {
			return shared.ErrorForbidden
		}
	case model.RoleEditor:
		if !p.Role.CanEdit() {
			return shared.ErrorForbidden
		}
	}
	return nil
}
