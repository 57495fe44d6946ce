// Package uploads stores recipe images and their thumbnails on disk.
package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"recipebook/models"
)

const (
	ThumbDir   = "thumb"
	ThumbWidth = 300
)

var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var unsafeChars = regexp.MustCompile(`[^\w.\-]`)

// Saved holds paths relative to the upload directory.
type Saved struct {
	Image     string
	Thumbnail string
}

type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) Dir() string {
	return s.dir
}

// SanitizeFilename strips any directory part and replaces characters
// outside [A-Za-z0-9_.-].
func SanitizeFilename(name string) string {
	clean := unsafeChars.ReplaceAllString(filepath.Base(strings.ReplaceAll(name, `\`, "/")), "_")
	if clean == "" || clean == "." || clean == ".." {
		return "image"
	}
	return clean
}

// Save writes the uploaded image as <unix-millis>-<name> and a
// ThumbWidth-wide thumbnail under ThumbDir. Anything that is not a JPEG,
// PNG or GIF is rejected with models.ErrValidation.
func (s *Store) Save(fh *multipart.FileHeader) (Saved, error) {
	name := SanitizeFilename(fh.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return Saved{}, fmt.Errorf("extension %q: %w", ext, models.ErrValidation)
	}

	src, err := fh.Open()
	if err != nil {
		return Saved{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return Saved{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if mt := http.DetectContentType(data); !allowedMIMEs[mt] {
		return Saved{}, fmt.Errorf("content type %q: %w", mt, models.ErrValidation)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Saved{}, fmt.Errorf("failed to decode image: %v: %w", err, models.ErrValidation)
	}

	if err := os.MkdirAll(filepath.Join(s.dir, ThumbDir), 0o755); err != nil {
		return Saved{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	fileName := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + name
	if err := os.WriteFile(filepath.Join(s.dir, fileName), data, 0o644); err != nil {
		return Saved{}, fmt.Errorf("failed to save image: %w", err)
	}

	thumb := imaging.Resize(img, ThumbWidth, 0, imaging.Lanczos)
	thumbName := filepath.ToSlash(filepath.Join(ThumbDir, fileName))
	if err := imaging.Save(thumb, filepath.Join(s.dir, thumbName)); err != nil {
		_ = os.Remove(filepath.Join(s.dir, fileName))
		return Saved{}, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return Saved{Image: fileName, Thumbnail: thumbName}, nil
}

// Remove deletes the files behind saved. Missing files are not an error.
func (s *Store) Remove(saved Saved) error {
	var errs []error
	for _, name := range []string{saved.Image, saved.Thumbnail} {
		if name == "" {
			continue
		}
		err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(name)))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
