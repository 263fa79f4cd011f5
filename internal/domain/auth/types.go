package auth

// Package auth contains domain-level types for the client session.
// It is pure and free of framework/adapter concerns.

import "slices"

// Role represents an application's authorization role as issued by the backend.
// Keep string form for easy persistence.
type Role string

const (
	RoleNone  Role = "none"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Claims are the self-asserted identity fields decoded from the access token payload.
// They are not verified and are used for display only, never for authorization.
type Claims struct {
	Subject    string
	Username   string
	GivenName  string
	FamilyName string
	Email      string
}

// Session is the durable authentication record. It exists iff an access token is stored.
type Session struct {
	AccessToken string
	// Claims is nil when the token payload could not be decoded.
	Claims *Claims
}

// CSRFState binds one login attempt to its callback.
type CSRFState struct {
	State    string
	Verifier string
}

// RoleRecord is the backend-authoritative authorization data cached next to the token.
type RoleRecord struct {
	Username string   `json:"username"`
	Role     Role     `json:"role"`
	IsAdmin  bool     `json:"is_admin"`
	IsUser   bool     `json:"is_user"`
	Groups   []string `json:"groups"`
}

// LeastPrivileged is the role data assumed when no Role Record is cached.
func LeastPrivileged() RoleRecord {
	return RoleRecord{Role: RoleNone, Groups: []string{}}
}

// InGroup reports whether the record lists the given group.
func (r RoleRecord) InGroup(group string) bool {
	return slices.Contains(r.Groups, group)
}

// UserInfo is the merged view handed to consumers: display claims plus role data.
type UserInfo struct {
	Subject    string   `json:"sub,omitempty"`
	Username   string   `json:"username"`
	GivenName  string   `json:"given_name,omitempty"`
	FamilyName string   `json:"family_name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Role       Role     `json:"role"`
	IsAdmin    bool     `json:"is_admin"`
	IsUser     bool     `json:"is_user"`
	Groups     []string `json:"groups"`
}

// DisplayName returns "given family" when available, else the username.
func (u UserInfo) DisplayName() string {
	switch {
	case u.GivenName != "" && u.FamilyName != "":
		return u.GivenName + " " + u.FamilyName
	case u.GivenName != "":
		return u.GivenName
	default:
		return u.Username
	}
}
