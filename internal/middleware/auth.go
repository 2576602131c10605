package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/courseboard/api/internal/constants"
	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/services"
)

// LoadUser resolves the session user into the request context, falling
// back to the remember cookie when no session exists. Requests without
// either continue as the guest; it is the permission predicates' job to
// reject them, not the middleware's.
func LoadUser(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(constants.ContextKeyUserID)

		userID, ok := sessionUserID(raw)
		if !ok {
			if user, ok := rememberedUser(c, auth); ok {
				// Cookie login upgrades to a session; if the save
				// fails the cookie simply logs in again next request.
				session.Set(constants.ContextKeyUserID, user.ID)
				_ = session.Save()

				c.Set(constants.ContextKeyUserID, user.ID)
				c.Set(constants.ContextKeyUser, *user)
				c.Next()
				return
			}
			c.Set(constants.ContextKeyUser, models.Guest)
			c.Next()
			return
		}

		scope := GetScope(c)
		user, err := auth.UserFromID(scope, userID)
		if err != nil {
			c.Set(constants.ContextKeyUser, models.Guest)
			c.Next()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyUser, *user)
		c.Next()
	}
}

// RequireAuth rejects guests with 401. Must run after LoadUser.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUser(c).IsGuest() {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUser retrieves the current user from context, guest if unset.
func GetUser(c *gin.Context) models.User {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return models.Guest
	}
	user, ok := v.(models.User)
	if !ok {
		return models.Guest
	}
	return user
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// rememberedUser authenticates from the remember cookie. The token is
// derived from the password hash, so a password change revokes it.
func rememberedUser(c *gin.Context, auth *services.AuthService) (*models.User, bool) {
	raw, err := c.Cookie(constants.RememberCookieName)
	if err != nil {
		return nil, false
	}
	idPart, token, found := strings.Cut(raw, ":")
	if !found {
		return nil, false
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}

	user, err := auth.UserFromID(GetScope(c), id)
	if err != nil || !auth.CheckCookieToken(user, token) {
		return nil, false
	}
	return user, true
}

func sessionUserID(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, v > 0
	case int:
		return int64(v), v > 0
	case uint64:
		return int64(v), v > 0
	default:
		return 0, false
	}
}
