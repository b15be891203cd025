package document

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// ErrUnsupportedFormat is returned when a compressed snapshot cannot be
// decoded by the format registered for its extension.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// Format decodes a snapshot file into its source text.
type Format interface {
	Name() string
	Extensions() []string
	Decode(r io.Reader) (io.Reader, error)
}

var registry []Format

// Register adds a format to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// formatFor returns the registered format for filename, or nil for plain text.
func formatFor(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// ReadText reads a snapshot from disk, decoding it with a registered format
// or returning the file contents as-is.
func ReadText(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var r io.Reader = file
	if f := formatFor(filename); f != nil {
		r, err = f.Decode(file)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, f.Name(), err)
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// XZFormat reads xz-compressed snapshots.
type XZFormat struct{}

// GzipFormat reads gzip-compressed snapshots.
type GzipFormat struct{}

func init() {
	Register(&XZFormat{})
	Register(&GzipFormat{})
}

func (f *XZFormat) Name() string         { return "xz" }
func (f *XZFormat) Extensions() []string { return []string{".xz"} }
func (f *XZFormat) Decode(r io.Reader) (io.Reader, error) {
	return xz.NewReader(r)
}

func (f *GzipFormat) Name() string         { return "gzip" }
func (f *GzipFormat) Extensions() []string { return []string{".gz"} }
func (f *GzipFormat) Decode(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}
