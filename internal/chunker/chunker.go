package chunker

import (
	"fmt"
)

// separatorGroups orders split boundaries from most to least semantically
// significant: blank line, newline, sentence terminator, comma, space. A hard
// character cut is the implicit last resort.
var separatorGroups = [][][]rune{
	{[]rune("\n\n")},
	{[]rune("\n")},
	{[]rune("."), []rune("!"), []rune("?")},
	{[]rune(",")},
	{[]rune(" ")},
}

// Chunker splits document text into bounded, overlapping chunks. Each chunk
// after the first re-includes the trailing overlap characters of the previous
// chunk so retrieval keeps context across split boundaries. Size and overlap
// count characters, not bytes, so multi-byte text is never cut mid-rune.
type Chunker struct {
	maxLen  int
	overlap int
}

// New validates the invariant 0 <= overlap < maxLen.
func New(maxLen, overlap int) (*Chunker, error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", maxLen)
	}
	if overlap < 0 || overlap >= maxLen {
		return nil, fmt.Errorf("chunk overlap must satisfy 0 <= overlap < %d, got %d", maxLen, overlap)
	}
	return &Chunker{maxLen: maxLen, overlap: overlap}, nil
}

// Split produces the chunk sequence for text. An empty document yields no
// chunks; a document at or under the size limit yields exactly one chunk
// equal to the document. Concatenating the first chunk with the non-overlap
// tail of every later chunk reconstructs the input.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.maxLen {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + c.maxLen
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		cut := start + c.cutPoint(runes[start:end])
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - c.overlap
	}
}

// cutPoint picks the split position within one window, trying each separator
// group in priority order. A candidate must leave more than overlap characters
// of new content so the sequence always advances. Falls back to a cut at the
// length budget.
func (c *Chunker) cutPoint(window []rune) int {
	for _, group := range separatorGroups {
		best := -1
		for _, sep := range group {
			idx := lastIndex(window, sep)
			if idx < 0 {
				continue
			}
			if cut := idx + len(sep); cut > c.overlap && cut > best {
				best = cut
			}
		}
		if best > 0 {
			return best
		}
	}
	return len(window)
}

// lastIndex returns the index of the last occurrence of sep in window, or -1.
func lastIndex(window, sep []rune) int {
	for i := len(window) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if window[i+j] != sep[j] {
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
