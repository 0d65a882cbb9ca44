package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Caller is the principal AuthRequired put on the request. OrganizationID
// is uuid.Nil when the token carried no tenant claim.
type Caller struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Roles          []string
}

func (c Caller) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// CallerFrom reads the caller from the gin context. ok is false when the
// request was not authenticated.
func CallerFrom(c *gin.Context) (caller Caller, ok bool) {
	raw, _ := c.Get(ContextUserIDKey)
	if caller.UserID, ok = raw.(uuid.UUID); !ok {
		return Caller{}, false
	}
	if raw, exists := c.Get(ContextTenantIDKey); exists {
		caller.OrganizationID, _ = raw.(uuid.UUID)
	}
	if raw, exists := c.Get(ContextRolesKey); exists {
		caller.Roles, _ = raw.([]string)
	}
	return caller, true
}

// MustGetTenantID returns the caller's organization. It aborts with 401 for
// anonymous requests and 400 when the token names no organization.
func MustGetTenantID(c *gin.Context) (uuid.UUID, bool) {
	caller, ok := CallerFrom(c)
	if !ok {
		abortUnauthorized(c, "unauthorized")
		return uuid.Nil, false
	}
	if caller.OrganizationID == uuid.Nil {
		Error(c, http.StatusBadRequest, "tenant ID is required", nil)
		c.Abort()
		return uuid.Nil, false
	}
	return caller.OrganizationID, true
}
