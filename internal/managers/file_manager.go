package managers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"rewear-server/internal/schemas"
)

const defaultMaxFileSize = 10 << 20 // 10 MiB

// FileMgr is an interface that outlines the contract for image storage.
type FileMgr interface {
	SaveImage(fileHeader *multipart.FileHeader, prefix string) (string, *schemas.CustomError)
	UploadDir() string
}

// FileManager stores uploaded images on the local filesystem and serves them
// back under the /uploads route.
type FileManager struct {
	uploadDir   string
	maxFileSize int64
}

// NewFileManager creates a FileManager rooted at UPLOAD_DIR, creating the
// directory if it does not exist yet.
func NewFileManager() (FileMgr, error) {
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	maxFileSize := int64(defaultMaxFileSize)
	if value := os.Getenv("MAX_FILE_SIZE"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil && parsed > 0 {
			maxFileSize = parsed
		}
	}

	return &FileManager{uploadDir: uploadDir, maxFileSize: maxFileSize}, nil
}

// UploadDir returns the directory uploaded files are stored in.
func (fm *FileManager) UploadDir() string {
	return fm.uploadDir
}

// SaveImage persists an uploaded image and returns the URL path it is served
// under. Only files declaring an image/* content type are accepted.
func (fm *FileManager) SaveImage(fileHeader *multipart.FileHeader, prefix string) (string, *schemas.CustomError) {
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", schemas.FileNotImage
	}

	if fileHeader.Size > fm.maxFileSize {
		return "", schemas.FileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Error opening uploaded file: ", err)
		return "", schemas.InternalServerError
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Debug("Error closing uploaded file: ", err)
		}
	}()

	filename := fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), extensionFor(contentType, fileHeader.Filename))
	destination, err := os.Create(filepath.Join(fm.uploadDir, filename))
	if err != nil {
		log.Error("Error creating image file: ", err)
		return "", schemas.InternalServerError
	}
	defer func() {
		if err := destination.Close(); err != nil {
			log.Debug("Error closing image file: ", err)
		}
	}()

	if _, err := io.Copy(destination, file); err != nil {
		log.Error("Error writing image file: ", err)
		return "", schemas.InternalServerError
	}

	return "/uploads/" + filename, nil
}

func extensionFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}

	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	return ".img"
}
