package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aescanero/modhub/internal/application/auth"
	"github.com/aescanero/modhub/internal/domain"
	"github.com/gin-gonic/gin"
)

// adminUserKey holds the verified admin name in the gin context
const adminUserKey = "adminUser"

// CORS middleware, open to every origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// adminAuth rejects requests without an accepted admin token. The token is
// read from the "token" query parameter, then from the Authorization header.
func adminAuth(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := gate.Verify(tokenFromRequest(c))
		if err != nil {
			message := domain.ErrInvalidToken.Error()
			if errors.Is(err, domain.ErrMissingToken) {
				message = domain.ErrMissingToken.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, AdminResponse{Success: false, Message: message})
			return
		}

		c.Set(adminUserKey, user)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	// "Bearer <token>" or any other "<scheme> <token>"
	fields := strings.Fields(c.GetHeader("Authorization"))
	if len(fields) >= 2 {
		return fields[1]
	}
	return ""
}
