package document

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestLoadPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.tex")
	require.NoError(t, os.WriteFile(path, []byte("\\paralabel{par:x}\r\nBody.\r\n\r\nNext"), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path)
	assert.Len(t, s.Digest, 32)

	got, ok := s.Paragraphs.Text("x")
	require.True(t, ok)
	assert.Equal(t, "Body.", got)
}

func TestLoadCompressed(t *testing.T) {
	dir := t.TempDir()
	content := []byte("\\paralabel{par:zip}Compressed body.")

	var xzBuf bytes.Buffer
	w, err := xz.NewWriter(&xzBuf)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	_, err = gw.Write(content)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	for name, data := range map[string][]byte{
		"paper.tex.xz": xzBuf.Bytes(),
		"paper.tex.gz": gzBuf.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, data, 0644))

			s, err := Load(path)
			require.NoError(t, err)
			got, ok := s.Paragraphs.Text("zip")
			require.True(t, ok)
			assert.Equal(t, "Compressed body.", got)
		})
	}
}

func TestLoadCorruptCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.tex.xz")
	require.NoError(t, os.WriteFile(path, []byte("not xz at all"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.tex")
	_, err := Load(path)
	require.Error(t, err)

	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, path, readErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestComputeDigest(t *testing.T) {
	a := ComputeDigest("Hello, World!")
	b := ComputeDigest("Different content")
	assert.Len(t, a, 32)
	assert.Equal(t, a, ComputeDigest("Hello, World!"))
	assert.NotEqual(t, a, b)
}

func TestSupportedFormats(t *testing.T) {
	assert.Contains(t, SupportedFormats(), "xz (.xz)")
	assert.Contains(t, SupportedFormats(), "gzip (.gz)")
}
