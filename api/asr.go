package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicegate/asr"
	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/server"
	"github.com/kbukum/voicegate/server/middleware"
	"github.com/kbukum/voicegate/storage"
	"github.com/kbukum/voicegate/validation"
	"github.com/kbukum/voicegate/version"
)

// UploadField is the multipart field holding the audio file.
const UploadField = "audio"

const maxListLimit = 1000

var uploadMIMETypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/ogg":   true,
	"audio/webm":  true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/wave":  true,
}

// ASRInfo is GET /api/v1/asr/.
func (h *Handler) ASRInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ASR service API", "version": version.Get().Version})
}

// Upload is POST /api/v1/asr/upload.
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile(UploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			server.RespondWithError(c, err)
			return
		}
		server.RespondWithError(c, apperrors.MissingField(UploadField).WithCause(err))
		return
	}

	mimeType := mediaType(fh.Header.Get("Content-Type"))
	if !uploadMIMETypes[mimeType] {
		server.RespondWithError(c, apperrors.InvalidInput(UploadField, "unsupported content type "+mimeType).
			WithDetail("accepted", acceptedMIMETypes()))
		return
	}

	f, err := fh.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	defer f.Close()

	username := ""
	if user, ok := middleware.CurrentUser(c); ok {
		username = user.Username
	}
	name := storage.UniqueName(fh.Filename, username)

	info, err := h.deps.Store.Save(c.Request.Context(), name, f)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			server.RespondWithError(c, apperrors.PayloadTooLarge(h.deps.MaxUploadBytes).WithCause(err))
			return
		}
		server.RespondWithError(c, storageError(name, err))
		return
	}

	h.log.WithContext(c.Request.Context()).Info("upload stored", logger.Fields(
		"file", info.Name,
		"size", info.Size,
		"user", username,
	))
	c.JSON(http.StatusOK, gin.H{
		"message":  "File uploaded successfully",
		"filePath": filepath.Join(h.deps.UploadPath, info.Name),
		"fileName": info.Name,
	})
}

type listResponse struct {
	TotalFiles  int      `json:"totalFiles"`
	CurrentPage any      `json:"currentPage"`
	TotalPages  int      `json:"totalPages"`
	Files       []string `json:"files"`
}

// List is GET /api/v1/asr/list?page&limit. A missing or zero page is the
// first page; a negative page returns every file.
func (h *Handler) List(c *gin.Context) {
	checks := validation.New()
	page := checks.IntParam("page", c.Query("page"), storage.DefaultPage)
	limit := checks.IntParam("limit", c.Query("limit"), storage.DefaultLimit)
	if page == 0 {
		page = storage.DefaultPage
	}
	if limit == 0 {
		limit = storage.DefaultLimit
	}
	if err := checks.Range("limit", limit, 1, maxListLimit).Err(); err != nil {
		server.RespondWithError(c, err)
		return
	}

	files, err := h.deps.Store.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	p := storage.Paginate(files, page, limit)
	names := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		names = append(names, f.Name)
	}
	c.JSON(http.StatusOK, listResponse{
		TotalFiles:  p.TotalFiles,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		Files:       names,
	})
}

// Remove is GET /api/v1/asr/remove/:fileName.
func (h *Handler) Remove(c *gin.Context) {
	name := c.Param("fileName")
	if err := h.deps.Store.Delete(c.Request.Context(), name); err != nil {
		server.RespondWithError(c, storageError(name, err))
		return
	}
	h.log.WithContext(c.Request.Context()).Info("upload removed", logger.Fields("file", name))
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

// Transcribe is GET /api/v1/asr/stt/:fileName.
func (h *Handler) Transcribe(c *gin.Context) {
	name := c.Param("fileName")
	if err := storage.ValidateName(name); err != nil {
		server.RespondWithError(c, storageError(name, err))
		return
	}
	res, err := h.deps.Transcriber.TranscribeFile(c.Request.Context(), name)
	if err != nil {
		server.RespondWithError(c, asr.ToAppError(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Ping is GET /api/v1/asr/ping.
func (h *Handler) Ping(c *gin.Context) {
	if err := h.deps.Engine.Ping(c.Request.Context()); err != nil {
		server.RespondWithError(c, asr.ToAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"r": "ok"})
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func acceptedMIMETypes() []string {
	return []string{"audio/mpeg", "audio/mp3", "audio/ogg", "audio/webm", "audio/wav", "audio/x-wav", "audio/wave"}
}
