package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys for the resolved tenant scope.
const (
	TenantIDKey = "tenant_id"
)

// TenantGuardConfig configures the tenant scope guard.
type TenantGuardConfig struct {
	// SkipPaths are paths served without a tenant scope (health, ping)
	SkipPaths []string
}

// RequireTenant ensures every authenticated request carries a well-formed
// tenant scope. It must run after the JWT middleware, which stores the raw
// tenant claim in the context.
func RequireTenant() gin.HandlerFunc {
	return RequireTenantWithConfig(TenantGuardConfig{})
}

// RequireTenantWithConfig returns the tenant guard with custom skip paths.
func RequireTenantWithConfig(cfg TenantGuardConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		tenantID := GetJWTTenantID(c)
		if tenantID == "" {
			abortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Tenant identification required")
			return
		}
		if _, err := uuid.Parse(tenantID); err != nil {
			abortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant ID format")
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID retrieves the tenant ID from gin.Context.
func GetTenantID(c *gin.Context) string {
	if tenantID, exists := c.Get(TenantIDKey); exists {
		if tid, ok := tenantID.(string); ok {
			return tid
		}
	}
	return ""
}

// GetTenantUUID retrieves the tenant ID as a UUID from gin.Context.
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(tenantID)
}
