// Package image provides utilities for loading and processing images.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "github.com/gen2brain/avif" // Register AVIF format
	_ "github.com/xfmoulet/qoi"   // Register QOI format
	_ "golang.org/x/image/webp"   // Register WebP format

	httputil "github.com/jmylchreest/vibrance/internal/util/http"
)

// ErrUnsupportedFormat is returned when image data is not in any registered
// format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given source.
	Load(ctx context.Context, src string) (image.Image, error)
}

// IsURL reports whether src is an HTTP(S) URL.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Decode decodes image data, transparently decompressing gzip, xz, zstd and
// bzip2 streams first. It returns the image format name.
func Decode(data []byte, maxBytes int64) (image.Image, string, error) {
	raw, _, err := Decompress(data, maxBytes)
	if err != nil {
		return nil, "", err
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
		}
		return nil, format, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return img, format, nil
}

// FileLoader loads images from the local filesystem.
type FileLoader struct {
	// MaxBytes caps decompressed input. Zero uses DefaultMaxDecompressedBytes.
	MaxBytes int64
}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Read returns the raw contents of an image file.
func (l *FileLoader) Read(_ context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP, QOI, AVIF, optionally compressed.
func (l *FileLoader) Load(ctx context.Context, path string) (image.Image, error) {
	data, err := l.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	img, _, err := Decode(data, l.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
	fetchOpts  httputil.FetchOptions
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader(fetchOpts httputil.FetchOptions) *SmartLoader {
	if fetchOpts.MaxBytes == 0 {
		fetchOpts.MaxBytes = DefaultMaxDecompressedBytes
	}
	return &SmartLoader{
		fileLoader: NewFileLoader(),
		fetchOpts:  fetchOpts,
	}
}

// Read returns the raw bytes of a local file or HTTP(S) URL.
func (l *SmartLoader) Read(ctx context.Context, src string) ([]byte, error) {
	if IsURL(src) {
		data, err := httputil.Fetch(ctx, src, l.fetchOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
		}
		return data, nil
	}
	return l.fileLoader.Read(ctx, src)
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, src string) (image.Image, error) {
	data, err := l.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	img, _, err := Decode(data, l.fileLoader.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return img, nil
}

// ValidateImagePath checks if the given path is valid and points to a
// supported image file or directory. URLs are accepted without fetching.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	if IsURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file or directory not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}

	if info.IsDir() {
		return nil
	}

	if !isImageFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".qoi", ".avif"}
}

// CompressedExtensions returns the extensions accepted after an image
// extension, e.g. "photo.png.gz".
func CompressedExtensions() []string {
	return []string{".gz", ".xz", ".zst", ".bz2"}
}

// isImageFile checks if a file has a supported image extension, optionally
// followed by a compression extension.
func isImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if slices.Contains(CompressedExtensions(), ext) {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	return slices.Contains(SupportedImageExtensions(), ext)
}

// ScanDirectoryForImages scans a directory and returns all valid image files.
// It does not recurse into subdirectories, but follows symlinks.
func ScanDirectoryForImages(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		// For symlinks, stat the target to determine if it's a file.
		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}
		if info.IsDir() {
			continue
		}

		if isImageFile(entry.Name()) {
			imageFiles = append(imageFiles, fullPath)
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}

	return imageFiles, nil
}

// ExpandSources replaces directories in srcs with the images they contain.
// Files and URLs are passed through unchanged.
func ExpandSources(srcs []string) ([]string, error) {
	var out []string
	for _, src := range srcs {
		if err := ValidateImagePath(src); err != nil {
			return nil, err
		}
		if IsURL(src) {
			out = append(out, src)
			continue
		}
		info, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("failed to access path: %w", err)
		}
		if !info.IsDir() {
			out = append(out, src)
			continue
		}
		files, err := ScanDirectoryForImages(src)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}
