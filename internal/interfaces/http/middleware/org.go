package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moldshop/backend/internal/infrastructure/logger"
)

// Context keys for org information stored in gin.Context
const (
	OrgIDKey     = "org_id"
	OrgHeaderKey = "X-Org-ID"
)

// OrgValidator defines the interface for validating an org
type OrgValidator interface {
	ValidateOrg(orgID string) error
}

// OrgMiddlewareConfig holds configuration for org middleware
type OrgMiddlewareConfig struct {
	// SkipPaths are paths that don't require org context (e.g., health check)
	SkipPaths []string
	// Required determines if org context is mandatory
	Required bool
	// Validator is an optional validator to check if the org exists and is active
	Validator OrgValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultOrgConfig returns default org middleware configuration
func DefaultOrgConfig() OrgMiddlewareConfig {
	return OrgMiddlewareConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:  true,
		Validator: nil,
		Logger:    nil,
	}
}

// OrgMiddleware extracts the org ID from the X-Org-ID request header.
// Every org-scoped route requires it; requests without a valid org ID
// are rejected before reaching the handler.
func OrgMiddleware() gin.HandlerFunc {
	return OrgMiddlewareWithConfig(DefaultOrgConfig())
}

// OrgMiddlewareWithConfig returns org middleware with custom configuration
func OrgMiddlewareWithConfig(cfg OrgMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		orgID := c.GetHeader(OrgHeaderKey)

		// Validate org ID format if present
		if orgID != "" {
			if _, err := uuid.Parse(orgID); err != nil {
				respondOrgRequired(c, "Invalid org ID format")
				return
			}
		}

		// Check if org is required
		if orgID == "" && cfg.Required {
			respondOrgRequired(c, "Org identification required")
			return
		}

		// Optional: Validate org exists and is active
		if orgID != "" && cfg.Validator != nil {
			if err := cfg.Validator.ValidateOrg(orgID); err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Org validation failed",
					zap.String("org_id", orgID),
					zap.Error(err),
				)
				respondOrgRequired(c, "Invalid or inactive org")
				return
			}
		}

		// Set org information in context
		if orgID != "" {
			// Set in gin context for easy access in handlers
			c.Set(OrgIDKey, orgID)

			// Set in request context for service layer access and log enrichment
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithOrgID(ctx, log, orgID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// respondOrgRequired sends a 400 response for missing or invalid org context
func respondOrgRequired(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_BAD_REQUEST",
			"message": message,
		},
	})
}

// GetOrgID retrieves the org ID from gin.Context
func GetOrgID(c *gin.Context) string {
	if orgID, exists := c.Get(OrgIDKey); exists {
		if oid, ok := orgID.(string); ok {
			return oid
		}
	}
	return ""
}

// GetOrgUUID retrieves the org ID as UUID from gin.Context
func GetOrgUUID(c *gin.Context) (uuid.UUID, error) {
	orgID := GetOrgID(c)
	if orgID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(orgID)
}

// MustGetOrgUUID retrieves the org ID as UUID or panics if not found
// Use this only in handlers behind OrgMiddleware with Required = true
func MustGetOrgUUID(c *gin.Context) uuid.UUID {
	orgUUID, err := GetOrgUUID(c)
	if err != nil || orgUUID == uuid.Nil {
		panic("valid org_id not found in context")
	}
	return orgUUID
}

// OptionalOrgMiddleware creates middleware that doesn't require an org
func OptionalOrgMiddleware() gin.HandlerFunc {
	cfg := DefaultOrgConfig()
	cfg.Required = false
	return OrgMiddlewareWithConfig(cfg)
}
