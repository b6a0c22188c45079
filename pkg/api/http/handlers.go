package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/aescanero/modhub/internal/application/catalog"
	"github.com/aescanero/modhub/internal/domain"
	"github.com/aescanero/modhub/pkg/adapters/uploads"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImportRequest is the body of a full catalog import
type ImportRequest struct {
	Mods json.RawMessage `json:"mods"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	count, err := s.catalog.Count(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "health check failed")
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":    time.Since(s.startedAt).Seconds(),
		"memory": gin.H{
			"alloc":      mem.Alloc,
			"totalAlloc": mem.TotalAlloc,
			"sys":        mem.Sys,
			"heapInuse":  mem.HeapInuse,
			"numGC":      mem.NumGC,
		},
		"modsCount": count,
	})
}

// handleListMods handles filtered catalog listing
func (s *Server) handleListMods(c *gin.Context) {
	mods, err := s.catalog.List(c.Request.Context(), domain.Filter{
		Game:   c.Query("game"),
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
	})
	if err != nil {
		s.respondError(c, err, "failed to list mods")
		return
	}

	c.JSON(http.StatusOK, mods)
}

// handleGetMod handles getting a single mod
func (s *Server) handleGetMod(c *gin.Context) {
	id, ok := modID(c)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgModNotFound})
		return
	}

	mod, err := s.catalog.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err, "failed to get mod")
		return
	}

	c.JSON(http.StatusOK, mod)
}

// handleCreateMod handles public submissions, either as a multipart form
// with optional "file" and "image" uploads or as a JSON body
func (s *Server) handleCreateMod(c *gin.Context) {
	if s.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	}

	var draft domain.Draft
	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm, gin.MIMEPOSTForm:
		if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			s.logger.Warn("invalid upload form", zap.Error(err))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
			return
		}
		draft = domain.Draft{
			Name:        c.PostForm("name"),
			Game:        c.PostForm("game"),
			Author:      c.PostForm("author"),
			Description: c.PostForm("description"),
			Version:     c.PostForm("version"),
			Tags:        domain.SplitTags(c.PostForm("tags")),
		}
	default:
		var req ModRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
			return
		}
		draft = domain.Draft{
			Name:        req.Name,
			Game:        req.Game,
			Author:      req.Author,
			Description: req.Description,
			Version:     req.Version,
			Tags:        []string(req.Tags),
		}
	}

	image, err := s.storeUpload(c, uploads.KindImage)
	if err != nil {
		s.respondError(c, err, "upload failed")
		return
	}
	if image == "" {
		image = uploads.DefaultImagePath
	}
	file, err := s.storeUpload(c, uploads.KindFile)
	if err != nil {
		s.respondError(c, err, "upload failed")
		return
	}
	draft.Image = image
	draft.FileURL = file

	mod, err := s.catalog.Create(c.Request.Context(), catalog.OriginPublic, draft)
	if err != nil {
		s.respondError(c, err, "failed to create mod")
		return
	}

	c.JSON(http.StatusCreated, mod)
}

// handleLikeMod handles liking a mod
func (s *Server) handleLikeMod(c *gin.Context) {
	id, ok := modID(c)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgModNotFound})
		return
	}

	likes, err := s.catalog.Like(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err, "failed to like mod")
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

// handleListGames handles listing distinct games
func (s *Server) handleListGames(c *gin.Context) {
	games, err := s.catalog.Games(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "failed to list games")
		return
	}
	c.JSON(http.StatusOK, games)
}

// handleListTags handles listing distinct tags
func (s *Server) handleListTags(c *gin.Context) {
	tags, err := s.catalog.Tags(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "failed to list tags")
		return
	}
	c.JSON(http.StatusOK, tags)
}

// handleStats handles catalog statistics
func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.catalog.Stats(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "failed to get stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// handleExport handles full catalog export
func (s *Server) handleExport(c *gin.Context) {
	export, err := s.catalog.Export(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "export failed")
		return
	}
	c.JSON(http.StatusOK, export)
}

// handleImport handles full catalog replacement
func (s *Server) handleImport(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidImport})
		return
	}

	var mods []domain.Mod
	if len(req.Mods) == 0 || req.Mods[0] != '[' {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidImport})
		return
	}
	if err := json.Unmarshal(req.Mods, &mods); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidImport})
		return
	}

	count, err := s.catalog.Import(c.Request.Context(), mods)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImport) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidImport})
			return
		}
		s.respondError(c, err, "import failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "importedCount": count})
}

// handleClearCache handles removing uploaded files
func (s *Server) handleClearCache(c *gin.Context) {
	cleared, err := s.uploads.Clear()
	if err != nil {
		s.respondError(c, err, "clear failed")
		return
	}

	s.logger.Info("upload cache cleared", zap.Int("cleared_items", cleared))
	c.JSON(http.StatusOK, gin.H{"success": true, "clearedItems": cleared})
}

// storeUpload saves the multipart file of kind, if present, and returns
// its public path
func (s *Server) storeUpload(c *gin.Context, kind uploads.Kind) (string, error) {
	if c.Request.MultipartForm == nil {
		return "", nil
	}

	header, err := c.FormFile(string(kind))
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}

	return s.saveFileHeader(kind, header)
}

func (s *Server) saveFileHeader(kind uploads.Kind, header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	p, err := s.uploads.Save(kind, header.Filename, f)
	if err != nil {
		return "", err
	}
	s.metrics.RecordUpload(string(kind))
	return p, nil
}

// modID parses the :id path parameter
func modID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// bindOptionalJSON decodes a JSON body, treating an empty body as {}
func bindOptionalJSON(c *gin.Context, v interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
