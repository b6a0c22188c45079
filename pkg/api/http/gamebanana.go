package http

import (
	"net/http"
	"strconv"

	"github.com/aescanero/modhub/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleGameBananaList proxies one page of the upstream FNF listing
func (s *Server) handleGameBananaList(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			page = p
		}
	}

	result, err := s.external.ListMods(c.Request.Context(), page)
	if err != nil {
		s.respondError(c, err, "failed to fetch GameBanana mods")
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleGameBananaImport copies one upstream mod into the local catalog
func (s *Server) handleGameBananaImport(c *gin.Context) {
	var req GameBananaImportRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}
	if req.ModID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "modId is required"})
		return
	}

	draft, err := s.external.FetchMod(c.Request.Context(), int64(req.ModID))
	if err != nil {
		s.respondError(c, err, "import failed")
		return
	}

	mod, err := s.catalog.Create(c.Request.Context(), catalog.OriginGameBanana, *draft)
	if err != nil {
		s.respondError(c, err, "import failed")
		return
	}

	s.logger.Info("imported mod from GameBanana",
		zap.Int("mod_id", mod.ID),
		zap.Int64("source_id", mod.SourceID))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"mod":     mod,
		"message": "imported mod from GameBanana",
	})
}
