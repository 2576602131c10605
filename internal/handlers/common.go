package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/services"
)

// respondError maps service failures onto the HTTP error vocabulary.
func respondError(c *gin.Context, err error) {
	switch apierrors.KindOf(err) {
	case apierrors.KindNotFound:
		apierrors.NotFound(c, err.Error())
		return
	case apierrors.KindPermissionDenied:
		apierrors.Forbidden(c, err.Error())
		return
	case apierrors.KindValidation:
		apierrors.BadRequest(c, err.Error())
		return
	case apierrors.KindPersistence:
		apierrors.InternalError(c, "")
		return
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrInvalidVerifyKey):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

// pathID parses a numeric path parameter, responding 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
