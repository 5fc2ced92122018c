package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	pdf "github.com/dslipak/pdf"
	"golang.org/x/net/html"
)

var supported = map[string]bool{
	".pdf":  true,
	".html": true,
	".htm":  true,
	".txt":  true,
	".md":   true,
}

// Supported reports whether path has an extension the library can extract text from.
func Supported(path string) bool {
	return supported[strings.ToLower(filepath.Ext(path))]
}

// ExtractText returns the plain text of a supported document.
func ExtractText(path string) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = extractTextFromPDF(path)
	case ".html", ".htm":
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil {
			text, err = extractMainText(data)
		}
	case ".txt", ".md":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		return "", fmt.Errorf("unsupported document type: %s", filepath.Base(path))
	}
	if err != nil {
		return "", err
	}

	return sanitizeUTF8(strings.TrimSpace(text)), nil
}

func extractTextFromPDF(path string) (text string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", err
	}

	// the parser panics on some malformed object streams
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed PDF file: %v", p)
		}
	}()

	r, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		return "", err
	}

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	buf := bytes.NewBuffer(nil)
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractMainText keeps visible text nodes, one per line, skipping scripts and styles.
func extractMainText(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node, bool)

	walk = func(n *html.Node, skip bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				skip = true
			}
		}

		if n.Type == html.TextNode && !skip {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	return b.String(), nil
}

// remove bytes inválidos para UTF-8
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		b.WriteRune(r)
		s = s[size:]
	}
	return b.String()
}
