package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	log "github.com/sirupsen/logrus"
	"github.com/voxeldragons/siteapi/internal/config"
)

// PublicPrefix is the URL path under which stored images are served.
const PublicPrefix = "/uploads"

// thumbnailWidth is the pixel width of generated thumbnails.
const thumbnailWidth = 800

// allowedMIMETypes maps accepted declared MIME types to file extensions.
// Only the declared type is checked; content is not sniffed.
var allowedMIMETypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ErrUnsupportedFileType indicates a declared MIME type outside the allow-list.
var ErrUnsupportedFileType = errors.New("unsupported file type (use PNG, JPEG, WebP or GIF)")

// Store writes uploaded images to a local directory and hands back public URLs.
type Store struct {
	dir           string
	publicBaseURL string
}

// NewStore creates the upload directory if needed and returns a Store.
func NewStore(cfg config.StorageConfig) (*Store, error) {
	dir := strings.TrimSpace(cfg.UploadDir)
	if dir == "" {
		return nil, fmt.Errorf("storage: empty upload dir")
	}
	if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", errMkdir)
	}
	return &Store{dir: dir, publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}, nil
}

// Dir returns the local directory backing the store.
func (s *Store) Dir() string { return s.dir }

// Save validates and persists one uploaded image, returning its public URL.
//
// The filename is built from a millisecond timestamp and a random suffix,
// namespaced by folder. Writes never overwrite an existing file. Decodable
// PNG/JPEG uploads also get an 800px-wide JPEG thumbnail alongside.
func (s *Store) Save(folder, originalName, mimeType string, r io.Reader) (string, error) {
	ext, ok := allowedMIMETypes[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		return "", ErrUnsupportedFileType
	}
	if fromName := strings.ToLower(filepath.Ext(originalName)); fromName != "" && validExtension(fromName) {
		ext = fromName
	}

	folder = sanitizeFolder(folder)
	if errMkdir := os.MkdirAll(filepath.Join(s.dir, folder), 0o755); errMkdir != nil {
		return "", fmt.Errorf("storage: create folder: %w", errMkdir)
	}

	data, errRead := io.ReadAll(r)
	if errRead != nil {
		return "", fmt.Errorf("storage: read upload: %w", errRead)
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), shortID(), ext)
	fullPath := filepath.Join(s.dir, folder, name)

	out, errOpen := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errOpen != nil {
		return "", fmt.Errorf("storage: create file: %w", errOpen)
	}
	if _, errWrite := out.Write(data); errWrite != nil {
		out.Close()
		return "", fmt.Errorf("storage: write file: %w", errWrite)
	}
	if errClose := out.Close(); errClose != nil {
		return "", fmt.Errorf("storage: close file: %w", errClose)
	}

	s.writeThumbnail(fullPath, mimeType, data)

	return s.publicURL(folder, name), nil
}

// writeThumbnail stores a resized JPEG next to the original. Failures only log;
// the original upload already succeeded.
func (s *Store) writeThumbnail(fullPath, mimeType string, data []byte) {
	var (
		img       image.Image
		errDecode error
	)
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		img, errDecode = png.Decode(bytes.NewReader(data))
	case "image/jpeg":
		img, errDecode = jpeg.Decode(bytes.NewReader(data))
	default:
		return
	}
	if errDecode != nil {
		log.WithError(errDecode).Debug("thumbnail decode failed")
		return
	}

	thumb := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
	thumbPath := strings.TrimSuffix(fullPath, filepath.Ext(fullPath)) + "_thumb.jpg"

	out, errOpen := os.OpenFile(thumbPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errOpen != nil {
		log.WithError(errOpen).Debug("thumbnail create failed")
		return
	}
	defer out.Close()
	if errEncode := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 80}); errEncode != nil {
		log.WithError(errEncode).Debug("thumbnail encode failed")
	}
}

// publicURL builds the externally visible URL for a stored file.
func (s *Store) publicURL(folder, name string) string {
	return s.publicBaseURL + PublicPrefix + "/" + folder + "/" + name
}

// sanitizeFolder reduces a caller-supplied folder to one safe path segment.
func sanitizeFolder(folder string) string {
	folder = strings.TrimSpace(folder)
	folder = strings.ReplaceAll(folder, "\\", "/")
	folder = filepath.Base(folder)
	if folder == "" || folder == "." || folder == ".." || folder == "/" {
		return "general"
	}
	return folder
}

// validExtension reports whether the extension belongs to an allowed type.
func validExtension(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return true
	}
	return false
}

// shortID returns a short random filename suffix.
func shortID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
