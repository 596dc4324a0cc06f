package constants

// ContextKeyUserID is the key used for the authenticated user ID in both
// the session and the Gin context.
const ContextKeyUserID = "user_id"

// SessionName is the cookie name for the session store.
const SessionName = "work_session"

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 8

// Pagination bounds for list endpoints.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxTaskProgress is the upper bound of the task progress percentage.
const MaxTaskProgress = 100
