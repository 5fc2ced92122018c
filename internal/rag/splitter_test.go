package rag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitterDefaults(t *testing.T) {
	s := NewSplitter(0, -1)
	assert.Equal(t, DefaultChunkSize, s.ChunkSize)
	assert.Equal(t, DefaultChunkSize/10, s.ChunkOverlap)

	s = NewSplitter(50, 80)
	assert.Equal(t, 5, s.ChunkOverlap, "overlap larger than size falls back")
}

func TestSplitEmpty(t *testing.T) {
	s := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\n  "))
}

func TestSplitSmallTextIsOneChunk(t *testing.T) {
	s := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	chunks := s.Split("  hello world  ")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitRespectsSizeAndOverlaps(t *testing.T) {
	words := make([]string, 600)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	text := strings.Join(words, " ")

	s := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 3)

	for i, c := range chunks {
		assert.LessOrEqual(t, runeLen(c), DefaultChunkSize, "chunk %d too long", i)
	}
	for i := 1; i < len(chunks); i++ {
		first := strings.Fields(chunks[i])[0]
		assert.Contains(t, chunks[i-1], first, "chunk %d does not overlap its predecessor", i)
		assert.NotEqual(t, strings.Fields(chunks[i-1])[0], first)
	}
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1], "w0599"))
}

func TestSplitPrefersParagraphs(t *testing.T) {
	para := strings.Repeat("a", 30)
	text := para + "\n\n" + para + "\n\n" + para

	s := NewSplitter(40, 0)
	chunks := s.Split(text)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, para, c)
	}
}

func TestSplitCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 1500)

	s := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	chunks := s.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1000, runeLen(chunks[0]))
	assert.Equal(t, 600, runeLen(chunks[1]))
}

func TestSplitKeepSeparator(t *testing.T) {
	assert.Equal(t, []string{"a", " b", " c"}, splitKeepSeparator("a b c", " "))
	assert.Equal(t, []string{" a", " "}, splitKeepSeparator(" a ", " "))
	assert.Equal(t, []string{"x", "é"}, splitKeepSeparator("xé", ""))
}
