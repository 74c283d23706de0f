package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/identity"
)

const detectFailed = "Failed to detect/save ingredient"

// DetectIngredient classifies an uploaded photo and stores the detected label
// in the user's fridge.
func (h *Handler) DetectIngredient(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		h.fail(c, apperr.Validation("No file uploaded"))
		return
	}

	userID, err := h.formUserID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	path, err := h.saveUpload(file)
	if err != nil {
		h.fail(c, apperr.Upstream(detectFailed, err))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to remove upload", "path", path, "error", err)
		}
	}()

	label, err := h.classify(c, path, file.Filename)
	if err != nil {
		upstreamCalls.WithLabelValues("classifier", "error").Inc()
		h.fail(c, apperr.Upstream(detectFailed, err))
		return
	}
	upstreamCalls.WithLabelValues("classifier", "ok").Inc()

	if label == "" {
		c.JSON(http.StatusOK, gin.H{"ok": true, "ingredient": nil, "saved": false})
		return
	}

	item, created, err := h.Ingredients.FindOrCreate(c.Request.Context(), userID, label)
	if err != nil {
		h.fail(c, apperr.Upstream(detectFailed, err))
		return
	}
	recordIngredient(created, "detect")

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"ingredient": label,
		"saved":      true,
		"created":    created,
		"item":       item,
	})
}

// formUserID reads the optional userID multipart field.
func (h *Handler) formUserID(c *gin.Context) (int64, error) {
	if raw := strings.TrimSpace(c.PostForm("userID")); raw != "" {
		return identity.ParseID("userID", raw)
	}
	return h.userID(c, optionalID{})
}

// saveUpload writes the upload to a uniquely named file in the upload directory.
func (h *Handler) saveUpload(file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.UploadDir, "detect-*"+strings.ToLower(filepath.Ext(file.Filename)))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return dst.Name(), nil
}

func (h *Handler) classify(c *gin.Context, path, filename string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to reopen upload: %w", err)
	}
	defer f.Close()

	return h.Classifier.Classify(c.Request.Context(), filename, f)
}
