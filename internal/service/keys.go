package service

// Storage keys. They are stable so a session survives process restarts and upgrades.
const (
	StateKey    = "familiez_oauth_state"
	VerifierKey = "familiez_pkce_verifier"
	TokenKey    = "familiez_access_token"
	RoleKey     = "familiez_user_role"
)
