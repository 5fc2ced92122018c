package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/josinaldojr/docqa/internal/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := NewLibrary(t.TempDir())
	require.NoError(t, err)
	return lib
}

func writeFile(t *testing.T, dir, name, content string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestCurrentWithoutDocuments(t *testing.T) {
	lib := newLibrary(t)
	require.NoError(t, lib.Discover())

	_, err := lib.Current()
	assert.ErrorIs(t, err, rag.ErrNoDocument)
}

func TestDiscoverPicksNewestSupportedFile(t *testing.T) {
	lib := newLibrary(t)
	now := time.Now()
	writeFile(t, lib.Dir(), "old.pdf", "old", now.Add(-2*time.Hour))
	writeFile(t, lib.Dir(), "new.txt", "new", now.Add(-time.Hour))
	writeFile(t, lib.Dir(), "newest.bin", "ignored", now)

	require.NoError(t, lib.Discover())

	doc, err := lib.Current()
	require.NoError(t, err)
	assert.Equal(t, "new.txt", doc.Name)
	assert.Equal(t, filepath.Join(lib.Dir(), "new.txt"), doc.Path)
}

func TestSaveIsByteIdenticalAndMovesPointer(t *testing.T) {
	lib := newLibrary(t)
	payload := []byte("%PDF-1.4\x00\x01binary\xff")

	doc, err := lib.Save("report.pdf", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", doc.Name)

	got, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	cur, err := lib.Current()
	require.NoError(t, err)
	assert.Equal(t, doc.Path, cur.Path)

	entries, err := os.ReadDir(lib.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file cleaned up")
}

func TestSaveUnsupportedKeepsPointer(t *testing.T) {
	lib := newLibrary(t)
	_, err := lib.Save("a.pdf", strings.NewReader("a"))
	require.NoError(t, err)

	_, err = lib.Save("image.png", strings.NewReader("png"))
	require.NoError(t, err)

	cur, err := lib.Current()
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", cur.Name)
}

func TestSaveStripsDirectories(t *testing.T) {
	lib := newLibrary(t)
	doc, err := lib.Save("../../etc/evil.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(lib.Dir(), "evil.pdf"), doc.Path)

	doc, err = lib.Save(`C:\Users\me\win.pdf`, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "win.pdf", doc.Name)
}

func TestSaveRejectsEmptyName(t *testing.T) {
	lib := newLibrary(t)
	_, err := lib.Save("", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = lib.Save("..", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestSaveOverwritesSameName(t *testing.T) {
	lib := newLibrary(t)
	_, err := lib.Save("a.txt", strings.NewReader("first"))
	require.NoError(t, err)
	doc, err := lib.Save("a.txt", strings.NewReader("second"))
	require.NoError(t, err)

	got, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestFingerprint(t *testing.T) {
	lib := newLibrary(t)
	doc, err := lib.Save("a.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	fp, err := lib.Fingerprint(doc)
	require.NoError(t, err)
	sum := sha256.Sum256([]byte("hello"))
	assert.Equal(t, hex.EncodeToString(sum[:]), fp)

	require.NoError(t, os.Remove(doc.Path))
	_, err = lib.Fingerprint(doc)
	assert.ErrorIs(t, err, rag.ErrNoDocument)
}

func TestText(t *testing.T) {
	lib := newLibrary(t)
	doc, err := lib.Save("notes.md", strings.NewReader("  # Title\n\nbody  "))
	require.NoError(t, err)

	text, err := lib.Text(doc)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", text)
}

func TestWatchPicksUpNewFiles(t *testing.T) {
	lib := newLibrary(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, lib.Watch(ctx))

	path := filepath.Join(lib.Dir(), "dropped.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		doc, err := lib.Current()
		return err == nil && doc.Path == path
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatchRediscoversWhenCurrentRemoved(t *testing.T) {
	lib := newLibrary(t)
	writeFile(t, lib.Dir(), "older.pdf", "x", time.Now().Add(-time.Hour))
	doc, err := lib.Save("newer.pdf", strings.NewReader("y"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, lib.Watch(ctx))

	require.NoError(t, os.Remove(doc.Path))

	assert.Eventually(t, func() bool {
		cur, err := lib.Current()
		return err == nil && cur.Name == "older.pdf"
	}, 2*time.Second, 20*time.Millisecond)
}
