package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/courseboard/api/internal/constants"
	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/middleware"
	"github.com/courseboard/api/internal/services"
)

// AuthHandler coordinates authentication and account HTTP handlers.
type AuthHandler struct {
	authService       *services.AuthService
	attachmentService *services.AttachmentService
	contextService    *services.ContextService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, attachmentService *services.AttachmentService, contextService *services.ContextService) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		attachmentService: attachmentService,
		contextService:    contextService,
	}
}

// Signup registers a new user and initializes the session.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		FirstName string `json:"first_name" binding:"required,max=100"`
		LastName  string `json:"last_name" binding:"required,max=100"`
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user, err := h.authService.Signup(scope, services.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusCreated, h.contextService.User(*user))
}

// Login authenticates a user and initializes the session. With
// remember set, a long-lived login cookie is issued alongside it.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Remember bool   `json:"remember"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user, err := h.authService.Login(scope, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	if req.Remember {
		token := fmt.Sprintf("%d:%s", user.ID, h.authService.CookieToken(user))
		c.SetCookie(constants.RememberCookieName, token, constants.RememberCookieMaxAge, "/", "", false, true)
	}

	c.JSON(http.StatusOK, h.contextService.User(*user))
}

// Logout removes the authentication session and the remember cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}
	c.SetCookie(constants.RememberCookieName, "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetUser(c)
	c.JSON(http.StatusOK, h.contextService.User(user))
}

// IssueTempPassword stores a short-lived password for the account. The
// cleartext goes out by email; the response only acknowledges.
func (h *AuthHandler) IssueTempPassword(c *gin.Context) {
	type TempPasswordRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req TempPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	if _, err := h.authService.IssueTempPassword(scope, req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Temporary password issued",
	})
}

// ChangePassword replaces the password of the signed-in user.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user, err := h.authService.UserFromID(scope, middleware.GetUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.authService.ChangePassword(scope, user, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed",
	})
}

// VerifyEmail marks the signed-in user's email verified when the key
// from the verification mail matches.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	type VerifyEmailRequest struct {
		Key string `json:"key" binding:"required"`
	}

	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user, err := h.authService.UserFromID(scope, middleware.GetUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.authService.VerifyEmail(scope, user, req.Key); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.contextService.User(*user))
}

// SetAvatar records uploaded avatar metadata and points the account at
// it, dropping the previous avatar's attachment row.
func (h *AuthHandler) SetAvatar(c *gin.Context) {
	type AvatarRequest struct {
		Name string `json:"name" binding:"required,max=255"`
		Path string `json:"path"`
		Size int64  `json:"size"`
	}

	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user, err := h.authService.UserFromID(scope, middleware.GetUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	previous := user.AvatarAttachmentID
	att, err := h.attachmentService.Create(scope, *user, req.Name, req.Path, req.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.attachmentService.SetUserAvatar(scope, user, att.ID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.dropAttachment(c, previous); err != nil {
		return
	}

	c.JSON(http.StatusOK, h.contextService.User(*user))
}

// ClearAvatar detaches the avatar and removes its attachment row.
func (h *AuthHandler) ClearAvatar(c *gin.Context) {
	scope := middleware.GetScope(c)
	user, err := h.authService.UserFromID(scope, middleware.GetUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	previous := user.AvatarAttachmentID
	if err := h.attachmentService.SetUserAvatar(scope, user, 0); err != nil {
		respondError(c, err)
		return
	}
	if err := h.dropAttachment(c, previous); err != nil {
		return
	}

	c.JSON(http.StatusOK, h.contextService.User(*user))
}

// dropAttachment deletes an orphaned attachment row, writing the error
// response itself on failure. A zero or already-gone id is fine.
func (h *AuthHandler) dropAttachment(c *gin.Context, id int64) error {
	if id == 0 {
		return nil
	}
	scope := middleware.GetScope(c)
	att, err := h.attachmentService.FromID(scope, id)
	if err != nil {
		return nil
	}
	if err := h.attachmentService.Delete(scope, att); err != nil {
		respondError(c, err)
		return err
	}
	return nil
}
