package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"toolmart/internal/domain/entity"
	"toolmart/internal/domain/repository"
	"toolmart/internal/domain/service"
	"toolmart/pkg/errors"
	"toolmart/pkg/logger"
	"toolmart/pkg/response"
)

type FileHandler struct {
	fileService      service.FileUploadService
	fileMetadataRepo repository.FileMetadataRepository
	maxFileSize      int64
}

func NewFileHandler(fileService service.FileUploadService, fileMetadataRepo repository.FileMetadataRepository) *FileHandler {
	return &FileHandler{
		fileService:      fileService,
		fileMetadataRepo: fileMetadataRepo,
		maxFileSize:      10 * 1024 * 1024,
	}
}

var fileHandler *FileHandler

func SetupFileHandler(fileService service.FileUploadService, fileMetadataRepo repository.FileMetadataRepository) {
	fileHandler = NewFileHandler(fileService, fileMetadataRepo)
}

func GetFileHandler() *FileHandler {
	return fileHandler
}

func (h *FileHandler) UploadFile(c echo.Context) error {
	logger.Debug("Starting file upload handler")

	file, err := c.FormFile("file")
	if err != nil {
		logger.Error("Error getting file from form: %v", err)
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	logger.Debug("Received file: %s, size: %d bytes, type: %s", file.Filename, file.Size, file.Header.Get("Content-Type"))

	if file.Size > h.maxFileSize {
		logger.Warn("File too large: %d bytes (max: %d)", file.Size, h.maxFileSize)
		return response.Error(c, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil))
	}

	fileType := file.Header.Get("Content-Type")
	if !isAllowedFileType(fileType) {
		logger.Warn("Invalid file type: %s", fileType)
		return response.Error(c, errors.BadRequest("File type not supported", nil))
	}

	folder := c.FormValue("folder")
	if folder == "" {
		folder = "uploads"
	} else {
		folder = sanitizeFolderName(folder)
	}

	isPublic := true
	if isPublicStr := c.FormValue("public"); isPublicStr != "" {
		isPublic, _ = strconv.ParseBool(isPublicStr)
	}

	src, err := file.Open()
	if err != nil {
		logger.Error("Error opening file: %v", err)
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	url, err := h.fileService.UploadFile(c.Request().Context(), src, fileType, folder, isPublic)
	if err != nil {
		logger.Error("Error from storage client: %v", err)
		return response.Error(c, errors.Internal("Failed to upload file", err))
	}

	userID := getUserIDFromContext(c)

	fileID := uuid.New().String()
	metadata := &entity.FileMetadata{
		ID:         fileID,
		URL:        url,
		ObjectName: objectNameFromURL(url),
		EntityType: c.FormValue("entityType"),
		EntityID:   c.FormValue("entityId"),
		UploadedBy: userID,
		Filename:   file.Filename,
		FileType:   fileType,
		FileSize:   file.Size,
		IsPublic:   isPublic,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := h.fileMetadataRepo.Create(c.Request().Context(), metadata); err != nil {
		logger.Error("Failed to save file metadata: %v", err)
	}

	return response.Success(c, map[string]interface{}{
		"id":       fileID,
		"url":      url,
		"filename": file.Filename,
		"size":     file.Size,
		"public":   isPublic,
	})
}

func (h *FileHandler) DeleteFile(c echo.Context) error {
	var req struct {
		ID string `json:"id" validate:"required"`
	}

	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	metadata, err := h.fileMetadataRepo.GetByID(c.Request().Context(), req.ID)
	if err != nil {
		logger.Error("Failed to get file metadata: %v", err)
		return response.Error(c, err)
	}

	if metadata.UploadedBy != userID {
		return response.Error(c, errors.Forbidden("You don't have permission to delete this file", nil))
	}

	if err := h.fileService.DeleteFile(c.Request().Context(), metadata.URL); err != nil {
		logger.Error("Failed to delete file from storage: %v", err)
		return response.Error(c, errors.Internal("Failed to delete file", err))
	}

	if err := h.fileMetadataRepo.Delete(c.Request().Context(), req.ID); err != nil {
		logger.Error("Failed to delete file metadata: %v", err)
	}

	return response.Success(c, map[string]string{
		"message": "File deleted successfully",
	})
}

// ListMyFiles returns the caller's uploads, newest first.
func (h *FileHandler) ListMyFiles(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	files, total, err := h.fileMetadataRepo.GetByUploader(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, files, total, limit, offset)
}

func getUserIDFromContext(c echo.Context) string {
	if uid, ok := c.Get("uid").(string); ok {
		return uid
	}
	return ""
}

var allowedFileTypes = map[string]bool{
	"image/jpeg":       true,
	"image/png":        true,
	"image/webp":       true,
	"image/gif":        true,
	"application/pdf":  true,
	"application/zip":  true,
	"application/json": true,
	"text/plain":       true,
}

func isAllowedFileType(fileType string) bool {
	return allowedFileTypes[fileType]
}

func sanitizeFolderName(folder string) string {
	folder = strings.ToLower(folder)
	var b strings.Builder
	for _, r := range folder {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "uploads"
	}
	return b.String()
}

func objectNameFromURL(url string) string {
	parts := strings.SplitN(url, "storage.googleapis.com/", 2)
	if len(parts) != 2 {
		return url
	}
	segments := strings.SplitN(parts[1], "/", 2)
	if len(segments) != 2 {
		return parts[1]
	}
	return segments[1]
}
