// Package authroles derives roles from group membership.
package authroles

import (
	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
)

// StaticRoleMapper maps groups by simple string membership rules.
// Admin membership wins over user membership.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

// Map returns RoleAdmin for AdminGroup membership, RoleUser for UserGroup,
// and RoleNone otherwise. Admin wins regardless of group order.
func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleNone
}

// Enabled reports whether any group is configured.
func (m StaticRoleMapper) Enabled() bool {
	return m.AdminGroup != "" || m.UserGroup != ""
}
