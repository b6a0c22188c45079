package http

import (
	"net/http"

	"github.com/aescanero/modhub/internal/application/catalog"
	"github.com/aescanero/modhub/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgModNotFound   = "mod not found"
	msgInvalidBody   = "invalid request body"
	msgInvalidImport = "invalid data format"
	msgInternal      = "internal server error"
)

// ErrorResponse is the error body of the public endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}

// AdminResponse is the body of every admin endpoint
type AdminResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	Mod     *domain.Mod `json:"mod,omitempty"`
}

// respondError writes err as a public error. Missing mods map to 404,
// everything else to 500 with the generic message.
func (s *Server) respondError(c *gin.Context, err error, message string) {
	if catalog.IsNotFound(err) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgModNotFound})
		return
	}

	s.logger.Error(message,
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

// respondAdminError is respondError for the admin endpoints
func (s *Server) respondAdminError(c *gin.Context, err error, message string) {
	if catalog.IsNotFound(err) {
		c.JSON(http.StatusNotFound, AdminResponse{Success: false, Message: msgModNotFound})
		return
	}

	s.logger.Error(message,
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, AdminResponse{Success: false, Message: message})
}

// recoverPanic turns a handler panic into a generic 500
func recoverPanic(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("handler panic",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
	})
}
