// Package chunker splits normalized document text into overlapping,
// bounded-size segments suitable for embedding.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// MinChunkChars is the minimum useful chunk length. Pieces at or below this
// many trimmed characters carry too little signal to embed and are dropped.
const MinChunkChars = 50

// separators is the priority-ordered list tried when splitting oversized
// text: paragraph break, line break, sentence boundary, word boundary, and
// finally a hard character cut.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter performs recursive character splitting. It is stateless and safe
// for concurrent use; the same input always yields the same chunk sequence.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter returns a Splitter producing chunks of at most size characters
// with the given overlap carried between adjacent chunks. Overlap must be
// smaller than size; out-of-range values fall back to size/4.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}
	return &Splitter{size: size, overlap: overlap}
}

// Chunk splits text into trimmed chunks of at most the configured size,
// dropping any piece of MinChunkChars or fewer characters. A non-empty
// input can legitimately produce zero chunks; callers treat that as an
// ingestion failure.
func (s *Splitter) Chunk(text string) []string {
	pieces := split(text, s.size, separators)
	chunks := s.assemble(pieces)

	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if utf8.RuneCountInString(c) > MinChunkChars {
			out = append(out, c)
		}
	}
	return out
}

// split recursively breaks text into pieces no longer than size characters,
// preferring the coarsest separator that occurs in the text. Separators are
// retained (SplitAfter) so concatenating the pieces reconstructs the input.
func split(text string, size int, seps []string) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	sep := ""
	var rest []string
	for i, cand := range seps {
		if cand == "" {
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = seps[i+1:]
			break
		}
	}
	if sep == "" {
		return hardCut(text, size)
	}

	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= size {
			out = append(out, part)
		} else {
			out = append(out, split(part, size, rest)...)
		}
	}
	return out
}

// assemble greedily packs consecutive pieces into chunks of at most size
// characters, seeding each new chunk with the last overlap characters of the
// previous one so context survives the boundary.
func (s *Splitter) assemble(pieces []string) []string {
	var chunks []string
	var cur []string
	curLen := 0

	for _, p := range pieces {
		plen := utf8.RuneCountInString(p)
		if curLen > 0 && curLen+plen > s.size {
			chunk := strings.Join(cur, "")
			chunks = append(chunks, chunk)

			cur = cur[:0]
			curLen = 0
			if tail := lastRunes(chunk, s.overlap); tail != "" && utf8.RuneCountInString(tail)+plen <= s.size {
				cur = append(cur, tail)
				curLen = utf8.RuneCountInString(tail)
			}
		}
		cur = append(cur, p)
		curLen += plen
	}
	if curLen > 0 {
		chunks = append(chunks, strings.Join(cur, ""))
	}
	return chunks
}

// hardCut is the empty-separator fallback: fixed-width cuts on rune
// boundaries for text with no usable separators.
func hardCut(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}

// lastRunes returns the trailing n runes of text.
func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
