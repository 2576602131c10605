package constants

const (
	// ContextKeyUserID is the gin/session key holding the signed-in user id.
	ContextKeyUserID = "user_id"
	// ContextKeyUser is the gin context key holding the resolved user record.
	ContextKeyUser = "current_user"
	// ContextKeyScope is the gin context key holding the request unit of work.
	ContextKeyScope = "unit_of_work"

	SessionCookieName = "courseboard_session"

	// RememberCookieName holds the long-lived "<userid>:<token>" login
	// cookie; the token dies with the password it is derived from.
	RememberCookieName   = "courseboard_remember"
	RememberCookieMaxAge = 30 * 24 * 60 * 60

	MinPasswordLength = 8

	// TempPasswordTTL is how long an issued temporary password stays valid,
	// in seconds.
	TempPasswordTTL int64 = 24 * 60 * 60

	// ImportantDueWindowDays is the lookahead window for flagging entries
	// with an upcoming due date as important.
	ImportantDueWindowDays = 14
)
