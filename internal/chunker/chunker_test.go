package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ShortTextDropped(t *testing.T) {
	s := NewSplitter(800, 200)

	// 30 characters of text, under the 50-char floor after trimming.
	chunks := s.Chunk("hello world, this is a test doc")
	assert.Empty(t, chunks)
}

func TestChunk_ExactlyFiftyCharsDropped(t *testing.T) {
	s := NewSplitter(800, 200)
	text := strings.Repeat("a", 50)
	require.Equal(t, 50, len(text))

	assert.Empty(t, s.Chunk(text), "50 chars is not strictly greater than the floor")
	assert.Len(t, s.Chunk(text+"b"), 1, "51 chars clears the floor")
}

func TestChunk_SingleChunkUnderSize(t *testing.T) {
	s := NewSplitter(800, 200)
	text := "This paragraph is comfortably longer than fifty characters and fits in one chunk."

	chunks := s.Chunk(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunk_SplitsOnParagraphs(t *testing.T) {
	s := NewSplitter(120, 0)
	para := strings.Repeat("alpha beta gamma delta epsilon zeta. ", 3) // ~111 chars
	text := para + "\n\n" + para + "\n\n" + para

	chunks := s.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120, "chunk exceeds size: %q", c)
	}
}

func TestChunk_OverlapCarriesContext(t *testing.T) {
	s := NewSplitter(100, 30)
	words := []string{"quick", "brown", "foxes", "jumped", "over", "lazy", "sleeping", "hounds", "near", "riverbanks"}
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString(words[i%len(words)])
		b.WriteString(" ")
	}
	text := strings.TrimSpace(b.String())

	chunks := s.Chunk(text)
	require.Greater(t, len(chunks), 1)

	// Each chunk after the first begins with a tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, suffixPrefixOverlap(chunks[i-1], chunks[i]), 15,
			"chunk %d does not overlap chunk %d: %q then %q", i-1, i, chunks[i-1], chunks[i])
	}
}

// suffixPrefixOverlap returns the length of the longest suffix of a that is
// also a prefix of b.
func suffixPrefixOverlap(a, b string) int {
	longest := min(len(a), len(b))
	for n := longest; n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return n
		}
	}
	return 0
}

func TestChunk_Deterministic(t *testing.T) {
	s := NewSplitter(200, 50)
	text := strings.Repeat("Paragraph one has some words in it.\n\nParagraph two has different words entirely. ", 10)

	first := s.Chunk(text)
	second := s.Chunk(text)
	assert.Equal(t, first, second)
}

func TestChunk_NoSeparatorsHardCut(t *testing.T) {
	s := NewSplitter(100, 0)
	text := strings.Repeat("x", 350) // no whitespace at all

	chunks := s.Chunk(text)
	require.Len(t, chunks, 4)
	assert.Equal(t, strings.Repeat("x", 100), chunks[0])
	assert.Equal(t, strings.Repeat("x", 50), chunks[3])
}

func TestChunk_ReconstructsTextWithoutOverlap(t *testing.T) {
	// With zero overlap and no sub-floor pieces, concatenating chunks must
	// reproduce the original text.
	s := NewSplitter(150, 0)
	text := strings.Repeat("All work and no play makes for dull documentation chapters. ", 10)
	text = strings.TrimSpace(text)

	chunks := s.Chunk(text)
	require.NotEmpty(t, chunks)

	var rebuilt strings.Builder
	for i, c := range chunks {
		if i > 0 {
			rebuilt.WriteString(" ")
		}
		rebuilt.WriteString(c)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunk_EmptyInput(t *testing.T) {
	s := NewSplitter(800, 200)
	assert.Empty(t, s.Chunk(""))
	assert.Empty(t, s.Chunk("   \n\n  \t "))
}

func TestNewSplitter_InvalidOverlapFallsBack(t *testing.T) {
	s := NewSplitter(100, 100) // overlap must be < size
	assert.Equal(t, 25, s.overlap)

	s = NewSplitter(100, -1)
	assert.Equal(t, 25, s.overlap)
}
