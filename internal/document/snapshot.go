package document

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/metcalfc/pardiff/internal/logging"
)

// Snapshot is one revision of a manuscript together with its paragraph index.
type Snapshot struct {
	Path       string
	Digest     string
	Paragraphs *ParagraphMap
}

// ReadError reports which snapshot could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Load reads a snapshot file and extracts its labeled paragraphs.
func Load(path string) (*Snapshot, error) {
	text, err := ReadText(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	s := FromText(path, text)

	logging.Info().
		Str("path", path).
		Int("bytes", len(text)).
		Int("paragraphs", s.Paragraphs.Len()).
		Str("digest", s.Digest).
		Msg("snapshot loaded")
	return s, nil
}

// FromText builds a snapshot from in-memory text. Windows line endings are
// normalized so blank-line boundaries are detected.
func FromText(path, text string) *Snapshot {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Snapshot{
		Path:       path,
		Digest:     ComputeDigest(text),
		Paragraphs: ExtractParagraphs(text),
	}
}

// ComputeDigest returns a content digest used to tell snapshot revisions apart.
func ComputeDigest(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16]) // First 16 bytes = 32 hex chars
}
