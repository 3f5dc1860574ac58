package model

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageBytes caps attachments at the inline request limit.
const MaxImageBytes = 20 << 20

// ImageExtensions are the file types the image picker offers.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// LoadImage reads an image file into an attachment.
func LoadImage(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxImageBytes {
		return nil, fmt.Errorf("image is too large (%d bytes, max %d)", info.Size(), MaxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	// TypeByExtension may append parameters
	mimeType, _, _ = strings.Cut(mimeType, ";")
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("unsupported file type %q", mimeType)
	}

	return &Image{
		Data:     base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
		Preview:  path,
	}, nil
}
