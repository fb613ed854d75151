package chunker

import (
	"fmt"
	"strings"
)

// Chunker splits document text into overlapping word windows. Each chunk
// holds at most Size words and starts Size-Overlap words after the
// previous one, so the last Overlap words of a chunk repeat at the start
// of the next.
type Chunker struct {
	Size    int
	Overlap int
}

func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap cannot be negative, got %d", overlap)
	}
	if overlap >= size {
		// The window would never advance.
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &Chunker{Size: size, Overlap: overlap}, nil
}

// Chunk splits text on whitespace and windows the resulting words.
// Empty or whitespace-only text yields zero chunks. The final chunk may
// hold fewer than Size words. Words inside a chunk are re-joined with a
// single space, so inter-word whitespace from the source is not preserved.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.Size - c.Overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + c.Size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// Count returns how many chunks Chunk would produce for a text of
// wordCount words, without materializing them.
func (c *Chunker) Count(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	step := c.Size - c.Overlap
	return (wordCount + step - 1) / step
}
