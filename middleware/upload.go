package middleware

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload limits: only images are accepted, capped at 5MB per file.
const (
	MaxUploadSize = 5 << 20
	MaxImages     = 5
	MaxDocuments  = 3
)

// ErrNotAnImage is returned when an uploaded file is not an image.
var ErrNotAnImage = errors.New("only image files are allowed")

// SaveUploadedFiles persists the files of one multipart field under dir and
// returns their public /uploads/ paths. Filenames are replaced with random
// ones; the original extension is kept. The multipart form must already be
// parsed.
func SaveUploadedFiles(r *http.Request, field string, maxCount int, dir string) ([]string, error) {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	if len(headers) > maxCount {
		return nil, fmt.Errorf("at most %d files allowed for %s", maxCount, field)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(headers))
	for _, header := range headers {
		path, err := saveOne(header, dir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func saveOne(header *multipart.FileHeader, dir string) (string, error) {
	if header.Size > MaxUploadSize {
		return "", fmt.Errorf("%s exceeds the 5MB upload limit", header.Filename)
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := checkImage(file, header); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

// checkImage verifies the declared content type, sniffing the file contents
// when the part carries no type header.
func checkImage(file multipart.File, header *multipart.FileHeader) error {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		buf := make([]byte, 512)
		n, err := file.Read(buf)
		if err != nil && err != io.EOF {
			return err
		}
		contentType = http.DetectContentType(buf[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}
	return nil
}
