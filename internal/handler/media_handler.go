package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/quizhost-api/internal/config"
)

// Допустимые типы медиафайлов вопросов
var allowedMediaTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"audio/mpeg": ".mp3",
	"audio/ogg":  ".ogg",
	"audio/wav":  ".wav",
}

// MediaHandler обрабатывает загрузку изображений и аудио вопросов
type MediaHandler struct {
	root        string
	maxUploadMB int
}

// NewMediaHandler создает обработчик медиа и гарантирует наличие директории
func NewMediaHandler(cfg config.MediaConfig) (*MediaHandler, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root %q: %w", cfg.Root, err)
	}
	maxUploadMB := cfg.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &MediaHandler{root: cfg.Root, maxUploadMB: maxUploadMB}, nil
}

// Root возвращает корневую директорию медиафайлов
func (h *MediaHandler) Root() string {
	return h.root
}

// Upload принимает один файл в multipart-поле "file" и возвращает
// его публичный URL. Имя файла генерируется заново: клиентское имя
// никогда не попадает на диск.
func (h *MediaHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	if fileHeader.Size > int64(h.maxUploadMB)<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file exceeds %d MB limit", h.maxUploadMB)})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedMediaTypes[strings.ToLower(contentType)]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported content type %q", contentType)})
		return
	}

	filename := uuid.NewString() + ext
	destination := filepath.Join(h.root, filename)
	if err := c.SaveUploadedFile(fileHeader, destination); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"filename": filename,
		"url":      "/media/" + filename,
	})
}
