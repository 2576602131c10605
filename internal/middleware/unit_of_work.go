package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/courseboard/api/internal/constants"
	"github.com/courseboard/api/internal/services"
	"github.com/courseboard/api/internal/uow"
)

// UnitOfWork opens a fresh scope for the request and flushes pending
// change notifications when the handler chain finishes. The flush is
// deferred so it also runs when a handler aborts: writes that happened
// before the failure still get announced.
func UnitOfWork(sync *services.SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := uow.NewScope()
		c.Set(constants.ContextKeyScope, scope)

		defer sync.Flush(scope)
		c.Next()
	}
}

// GetScope retrieves the request's unit of work. Handlers outside the
// UnitOfWork chain get a throwaway scope so nothing nil-panics.
func GetScope(c *gin.Context) *uow.Scope {
	v, exists := c.Get(constants.ContextKeyScope)
	if !exists {
		return uow.NewScope()
	}
	scope, ok := v.(*uow.Scope)
	if !ok {
		return uow.NewScope()
	}
	return scope
}
