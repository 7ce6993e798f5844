package middleware

import "github.com/labstack/echo/v4"

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// UserID returns the authenticated account id stored by JWTAuth.
func UserID(c echo.Context) (string, bool) {
	s, ok := c.Get(CtxUserID).(string)
	return s, ok && s != ""
}

// Role returns the role claim stored by JWTAuth.
func Role(c echo.Context) (string, bool) {
	s, ok := c.Get(CtxRole).(string)
	return s, ok && s != ""
}

// currentUserID is UserID with "anon" for unauthenticated requests, used to
// build rate-limit keys.
func currentUserID(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return id
	}
	return "anon"
}
