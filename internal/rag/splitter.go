package rag

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks text into chunks of at most ChunkSize runes, trying paragraph,
// line and word boundaries before falling back to single characters. Consecutive
// chunks share up to ChunkOverlap runes.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 10
	}
	return &Splitter{
		ChunkSize:    size,
		ChunkOverlap: overlap,
		Separators:   defaultSeparators,
	}
}

func (s *Splitter) Split(text string) []string {
	return s.split(text, s.Separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var out, good []string
	for _, piece := range splitKeepSeparator(text, separator) {
		if runeLen(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(next) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, next)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge packs small pieces into chunks, carrying the tail of each emitted chunk
// into the next one as overlap.
func (s *Splitter) merge(pieces []string) []string {
	var docs, current []string
	total := 0

	emit := func() {
		doc := strings.TrimSpace(strings.Join(current, ""))
		if doc != "" {
			docs = append(docs, doc)
		}
	}

	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.ChunkSize && len(current) > 0 {
			emit()
			for len(current) > 0 && (total > s.ChunkOverlap || total+n > s.ChunkSize) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	emit()
	return docs
}

// splitKeepSeparator splits text on sep, keeping sep at the start of every
// piece after the first. An empty sep yields one piece per rune.
func splitKeepSeparator(text, sep string) []string {
	var out []string
	if sep == "" {
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
