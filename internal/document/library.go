// Package document stores uploaded files and tracks which one the RAG service
// answers from.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/josinaldojr/docqa/internal/rag"
)

var ErrInvalidName = errors.New("invalid file name")

// Library is the upload directory plus a pointer to the current document: the
// newest supported file, seeded by Discover and moved by Save and Watch.
type Library struct {
	dir string

	mu      sync.RWMutex
	current *rag.Document
}

func NewLibrary(dir string) (*Library, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Library{dir: abs}, nil
}

func (l *Library) Dir() string {
	return l.dir
}

// Discover points the library at the most recently modified supported file.
// An empty directory leaves it without a current document.
func (l *Library) Discover() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return err
	}

	var newest *rag.Document
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == nil || info.ModTime().After(newest.ModTime) {
			newest = &rag.Document{
				Name:    e.Name(),
				Path:    filepath.Join(l.dir, e.Name()),
				ModTime: info.ModTime(),
			}
		}
	}

	l.mu.Lock()
	l.current = newest
	l.mu.Unlock()
	return nil
}

// Save writes r verbatim to the upload directory under the base of name,
// replacing any file with the same name.
func (l *Library) Save(name string, r io.Reader) (rag.Document, error) {
	base := cleanName(name)
	if base == "" {
		return rag.Document{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return rag.Document{}, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return rag.Document{}, err
	}
	if err := tmp.Close(); err != nil {
		return rag.Document{}, err
	}

	path := filepath.Join(l.dir, base)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return rag.Document{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return rag.Document{}, err
	}

	doc := rag.Document{Name: base, Path: path, ModTime: info.ModTime()}
	if Supported(base) {
		l.setCurrent(doc)
	}
	return doc, nil
}

func (l *Library) Current() (rag.Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return rag.Document{}, rag.ErrNoDocument
	}
	return *l.current, nil
}

// Fingerprint is the hex SHA-256 of the document's bytes.
func (l *Library) Fingerprint(doc rag.Document) (string, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s was removed", rag.ErrNoDocument, doc.Name)
		}
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (l *Library) Text(doc rag.Document) (string, error) {
	return ExtractText(doc.Path)
}

// Watch follows the upload directory until ctx is done, so files copied in
// by other means become current as soon as they are written.
func (l *Library) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(l.dir); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				l.handle(event)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("upload watcher error: %v", err)
			}
		}
	}()
	return nil
}

func (l *Library) handle(event fsnotify.Event) {
	if !Supported(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return
		}
		l.setCurrent(rag.Document{
			Name:    filepath.Base(event.Name),
			Path:    event.Name,
			ModTime: info.ModTime(),
		})

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		cur, err := l.Current()
		if err != nil || cur.Path != event.Name {
			return
		}
		if err := l.Discover(); err != nil {
			log.Printf("rediscover after %s removed: %v", cur.Name, err)
		}
	}
}

func (l *Library) setCurrent(doc rag.Document) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil || l.current.Path != doc.Path {
		log.Printf("current document: %s", doc.Name)
	}
	l.current = &doc
}

func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." || strings.HasPrefix(base, ".upload-") {
		return ""
	}
	return base
}

var _ rag.Documents = (*Library)(nil)
