package constants

// Session / context keys
const (
	SessionCookieName  = "courrier_session"
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Pagination bounds
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8
