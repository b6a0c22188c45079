package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aescanero/modhub/internal/application/catalog"
	"github.com/aescanero/modhub/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultModVersion = "1.0.0"

// handleAdminLogin exchanges the admin credentials for a token
func (s *Server) handleAdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, AdminResponse{Success: false, Message: msgInvalidBody})
		return
	}

	token, err := s.gate.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.logger.Warn("admin login rejected", zap.String("username", req.Username))
			c.JSON(http.StatusUnauthorized, AdminResponse{Success: false, Message: err.Error()})
			return
		}
		s.respondAdminError(c, err, "login failed")
		return
	}

	s.logger.Info("admin logged in", zap.String("username", req.Username))
	c.JSON(http.StatusOK, AdminResponse{
		Success: true,
		Token:   token,
		Message: "login successful",
	})
}

// handleAdminListMods returns the whole catalog unfiltered
func (s *Server) handleAdminListMods(c *gin.Context) {
	mods, err := s.catalog.List(c.Request.Context(), domain.Filter{})
	if err != nil {
		s.respondAdminError(c, err, "failed to list mods")
		return
	}
	c.JSON(http.StatusOK, mods)
}

// handleAdminCreateMod adds a mod with admin-supplied counts and URLs
func (s *Server) handleAdminCreateMod(c *gin.Context) {
	var req ModRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, AdminResponse{Success: false, Message: msgInvalidBody})
		return
	}

	draft := req.Draft()
	if draft.Version == "" {
		draft.Version = defaultModVersion
	}
	if draft.Image == "" {
		draft.Image = fmt.Sprintf("https://picsum.photos/seed/mod%d/400/300.jpg", time.Now().UnixMilli())
	}

	mod, err := s.catalog.Create(c.Request.Context(), catalog.OriginAdmin, draft)
	if err != nil {
		s.respondAdminError(c, err, "failed to create mod")
		return
	}

	c.JSON(http.StatusCreated, AdminResponse{Success: true, Mod: mod})
}

// handleAdminUpdateMod merges the non-empty request fields into a mod
func (s *Server) handleAdminUpdateMod(c *gin.Context) {
	id, ok := modID(c)
	if !ok {
		c.JSON(http.StatusNotFound, AdminResponse{Success: false, Message: msgModNotFound})
		return
	}

	var req ModRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, AdminResponse{Success: false, Message: msgInvalidBody})
		return
	}

	mod, err := s.catalog.Update(c.Request.Context(), id, req.Patch())
	if err != nil {
		s.respondAdminError(c, err, "failed to update mod")
		return
	}

	c.JSON(http.StatusOK, AdminResponse{Success: true, Mod: mod})
}

// handleAdminDeleteMod removes a mod
func (s *Server) handleAdminDeleteMod(c *gin.Context) {
	id, ok := modID(c)
	if !ok {
		c.JSON(http.StatusNotFound, AdminResponse{Success: false, Message: msgModNotFound})
		return
	}

	if err := s.catalog.Delete(c.Request.Context(), id); err != nil {
		s.respondAdminError(c, err, "failed to delete mod")
		return
	}

	s.logger.Info("mod deleted by admin",
		zap.Int("mod_id", id),
		zap.String("admin", c.GetString(adminUserKey)))
	c.JSON(http.StatusOK, AdminResponse{Success: true, Message: "mod deleted"})
}
