package helpers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UploadConfig struct {
	MaxSizeBytes     int64
	AllowedMimeTypes []string
	UploadBasePath   string
	// PublicPrefix is the URL path the base directory is served under.
	PublicPrefix string
}

var DefaultImageUploadConfig = UploadConfig{
	MaxSizeBytes: 5 * 1024 * 1024, // 5MB
	AllowedMimeTypes: []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	},
	UploadBasePath: "./uploads/",
	PublicPrefix:   "/uploads",
}

// imageExtensions maps sniffed content types to the extension files are
// stored under. The client filename is never trusted.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageUploadConfig is the default image policy rooted at dir.
func ImageUploadConfig(dir string) UploadConfig {
	config := DefaultImageUploadConfig
	if dir != "" {
		config.UploadBasePath = dir
	}
	return config
}

// UploadFile stores the file under <base>/<uploadType>/<uuid><ext> and
// returns the public URL path it is served from.
func UploadFile(c *gin.Context, fileHeader *multipart.FileHeader, uploadType string, configs ...UploadConfig) (string, error) {
	config := DefaultImageUploadConfig
	if len(configs) > 0 {
		config = configs[0]
	}

	if fileHeader.Size > config.MaxSizeBytes {
		return "", fmt.Errorf("file size exceeds maximum limit of %d MB", config.MaxSizeBytes/(1024*1024))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	mimeType := http.DetectContentType(buffer[:n])

	mimeTypeAllowed := false
	for _, allowedType := range config.AllowedMimeTypes {
		if mimeType == allowedType {
			mimeTypeAllowed = true
			break
		}
	}
	if !mimeTypeAllowed {
		return "", fmt.Errorf("invalid file type. Allowed types: %v", config.AllowedMimeTypes)
	}

	ext, ok := imageExtensions[mimeType]
	if !ok {
		return "", fmt.Errorf("no file extension for type %s", mimeType)
	}

	uploadPath := filepath.Join(config.UploadBasePath, uploadType)
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	fullFilepath := filepath.Join(uploadPath, filename)

	if err := c.SaveUploadedFile(fileHeader, fullFilepath); err != nil {
		return "", err
	}

	return strings.TrimRight(config.PublicPrefix, "/") + "/" + uploadType + "/" + filename, nil
}

// DeleteUpload removes a file previously returned by UploadFile. URLs
// outside the public prefix are ignored.
func DeleteUpload(publicURL string, config UploadConfig) error {
	prefix := strings.TrimRight(config.PublicPrefix, "/") + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return nil
	}
	relative := filepath.Clean(strings.TrimPrefix(publicURL, prefix))
	if strings.HasPrefix(relative, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(config.UploadBasePath, relative))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
