package router

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumenshop/api/pkg/global"
	"github.com/lumenshop/api/pkg/redis"
)

const principalKey = "principal"

// AuthRequired resolves the bearer token into a Principal. Token issuance
// and storage live in the redis sessions store.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Authentication required", nil))
			c.Abort()
			return
		}

		principal, err := a.Sessions.Get(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid or expired session", nil))
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Set("sessionToken", token)
		c.Next()
	}
}

func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.principal(c).IsAdmin() {
			c.JSON(http.StatusForbidden, global.ErrorResponse("Admin access required", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuditTrail records every mutating admin request after it completes.
// Failures to write the log are logged but never fail the request.
func (a *API) AuditTrail() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}

		principal := a.principal(c)
		action := fmt.Sprintf("%s %s", c.Request.Method, c.FullPath())
		detail := fmt.Sprintf("status=%d", c.Writer.Status())
		if err := a.Store.WriteAuditLog(c.Request.Context(), principal.CustomerID,
			action, c.Param("id"), detail); err != nil {
			log.Printf("failed to write audit log: %v", err)
		}
	}
}

func (a *API) principal(c *gin.Context) *redis.Principal {
	value, _ := c.Get(principalKey)
	principal, _ := value.(*redis.Principal)
	if principal == nil {
		// AuthRequired always runs first on these routes.
		return &redis.Principal{}
	}
	return principal
}
