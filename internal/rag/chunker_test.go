package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_EmptyInput(t *testing.T) {
	c := NewChunker(1000, 200)

	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestSplit_ShortInputIsSingleChunk(t *testing.T) {
	c := NewChunker(1000, 200)
	text := "A short document that fits into one window."

	chunks := c.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_InputExactlyOneWindow(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("a", 100)

	chunks := c.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_HardCutHasExactOverlap(t *testing.T) {
	c := NewChunker(100, 20)
	// No separator anywhere, so every cut is a hard cut at the window edge.
	text := strings.Repeat("a", 250)

	chunks := c.Split(text)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		curr := []rune(chunks[i])
		tail := string(prev[len(prev)-20:])
		head := string(curr[:20])
		assert.Equal(t, tail, head, "chunk %d should start with the previous chunk's overlap", i)
	}
}

func TestSplit_PrefersParagraphBreak(t *testing.T) {
	c := NewChunker(100, 20)
	// Paragraph break sits in the second half of the first window.
	text := strings.Repeat("a", 80) + "\n\n" + strings.Repeat("b", 120)

	chunks := c.Split(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"), "first chunk should end at the paragraph break")
	assert.NotContains(t, chunks[0], "b")
}

func TestSplit_PrefersSentenceEndOverWordBoundary(t *testing.T) {
	c := NewChunker(100, 20)
	// A sentence end at position 70 and spaces after it; the sentence end wins
	// even though later word boundaries exist in the window.
	text := strings.Repeat("a", 68) + ". " + strings.Repeat("b", 10) + " " + strings.Repeat("c", 100)

	chunks := c.Split(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], ". "))
}

func TestSplit_EveryChunkWithinSize(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("word and more text. ", 200)

	chunks := c.Split(text)

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100, "chunk %d exceeds the window", i)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestSplit_CoversWholeInput(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50)

	chunks := c.Split(text)

	require.NotEmpty(t, chunks)
	// The last rune of the input must appear in the last chunk.
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(strings.TrimRight(text, " "), strings.TrimRight(last, " ")) ||
		strings.Contains(text, last))
	// First chunk starts the input.
	assert.True(t, strings.HasPrefix(text, chunks[0]))
}

func TestSplit_TerminatesOnPathologicalInput(t *testing.T) {
	c := NewChunker(50, 10)
	// All spaces: chunks are blank and dropped, but the loop must still finish.
	chunks := c.Split(strings.Repeat(" ", 500))
	assert.Empty(t, chunks)
}

func TestNewChunker_Defaults(t *testing.T) {
	c := NewChunker(0, -1)

	assert.Equal(t, defaultChunkSize, c.size)
	assert.Equal(t, defaultChunkOverlap, c.overlap)
}

func TestNewChunker_OverlapClampedBelowHalfSize(t *testing.T) {
	c := NewChunker(100, 90)

	assert.Less(t, c.overlap, c.size/2)
}
