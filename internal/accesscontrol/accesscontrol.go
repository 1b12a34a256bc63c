// Package accesscontrol holds the single allow/deny predicate every handler
// consults before touching a record: admins pass everywhere, otherwise a
// caller may only reach itself (users) or properties whose access set lists
// it. List endpoints are gated on the admin role at the router instead.
package accesscontrol

import (
	"slices"

	"github.com/proprio/propertyhub/internal/domain/user"
)

// Actor is the authenticated principal derived from a verified token.
type Actor struct {
	ID    string
	Email string
	Roles []string
}

func (a Actor) IsAdmin() bool {
	return slices.Contains(a.Roles, user.RoleAdmin)
}

// CanAccessUser allows admins and the user itself.
func CanAccessUser(a Actor, targetID string) bool {
	if a.IsAdmin() {
		return true
	}

	return a.ID != "" && a.ID == targetID
}

// CanAccessProperty allows admins and members of the property's access set.
func CanAccessProperty(a Actor, accessSet []string) bool {
	if a.IsAdmin() {
		return true
	}

	return a.ID != "" && slices.Contains(accessSet, a.ID)
}
