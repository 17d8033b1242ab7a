package rag

import "strings"

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// Chunker splits extracted text into overlapping segments. It prefers to cut
// at a paragraph break, then a line break, then a sentence end, then a word
// boundary, and only falls back to a hard character cut when the window
// contains none of those. The overlap keeps content spanning a cut visible
// to both neighboring chunks.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultChunkOverlap
	}
	if overlap >= size/2 {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split returns the ordered, finite sequence of non-empty chunks for text.
// Empty input yields no chunks; input at most one window long is returned
// as a single chunk equal to the input.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 || strings.TrimSpace(text) == "" {
		return nil
	}
	if len(runes) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			tail := string(runes[start:])
			if strings.TrimSpace(tail) != "" {
				chunks = append(chunks, tail)
			}
			break
		}
		cut := c.cutPoint(runes, start, end)
		piece := string(runes[start:cut])
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, piece)
		}
		start = cut - c.overlap
	}
	return chunks
}

// Boundary separators in preference order. Multi-rune entries must be
// matched as a whole.
var boundarySeparators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune(" "),
}

// cutPoint picks where to end the chunk starting at start whose window ends
// at end (exclusive, end < len(runes)). Natural boundaries are only taken
// from the second half of the window so the step always stays larger than
// the overlap. Returns end when no boundary is found (hard cut).
func (c *Chunker) cutPoint(runes []rune, start, end int) int {
	min := start + c.size/2
	for _, sep := range boundarySeparators {
		if idx := lastIndexRunes(runes, min, end, sep); idx >= 0 {
			return idx + len(sep)
		}
	}
	return end
}

// lastIndexRunes finds the highest i in [min, end-len(sep)] such that sep
// occurs at runes[i]; -1 when absent.
func lastIndexRunes(runes []rune, min, end int, sep []rune) int {
	for i := end - len(sep); i >= min; i-- {
		match := true
		for j := range sep {
			if runes[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
