package image

import (
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// DefaultMaxDecompressedBytes caps the size of a decompressed image stream.
const DefaultMaxDecompressedBytes = 100 * 1024 * 1024

// ErrSizeLimitExceeded is returned when a decompressed stream grows past the
// configured limit.
var ErrSizeLimitExceeded = errors.New("decompression size limit exceeded")

// Compression identifies a stream compression format.
type Compression string

// Recognised compression formats.
const (
	CompressionNone  Compression = ""
	CompressionGzip  Compression = "gzip"
	CompressionXz    Compression = "xz"
	CompressionZstd  Compression = "zstd"
	CompressionBzip2 Compression = "bzip2"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	bzip2Magic = []byte{'B', 'Z', 'h'}
)

// DetectCompression sniffs the compression format from the leading bytes.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXz
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, bzip2Magic):
		return CompressionBzip2
	default:
		return CompressionNone
	}
}

// limitedReader wraps an io.Reader and limits the total bytes that can be read.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// Only an error if the source still has data.
		var probe [1]byte
		if n, _ := l.r.Read(probe[:]); n > 0 {
			return 0, ErrSizeLimitExceeded
		}
		return 0, io.EOF
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}

// Decompress returns data unchanged when it is not compressed, otherwise the
// decompressed bytes. At most maxBytes are produced; zero uses
// DefaultMaxDecompressedBytes.
func Decompress(data []byte, maxBytes int64) ([]byte, Compression, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDecompressedBytes
	}

	kind := DetectCompression(data)
	var r io.Reader

	switch kind {
	case CompressionNone:
		return data, kind, nil
	case CompressionGzip:
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	case CompressionXz:
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	case CompressionBzip2:
		r = bzip2.NewReader(bytes.NewReader(data))
	}

	out, err := io.ReadAll(&limitedReader{r: r, remaining: maxBytes})
	if err != nil {
		return nil, kind, fmt.Errorf("failed to decompress %s stream: %w", kind, err)
	}
	return out, kind, nil
}
