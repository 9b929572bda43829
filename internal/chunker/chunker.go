// Package chunker splits normalized document text into overlapping,
// fixed-size character windows.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Defaults match the window used when the corpus was first tuned.
const (
	DefaultSize    = 600
	DefaultOverlap = 100
)

// ErrEmptyDocument is returned when a document has no text after normalization.
var ErrEmptyDocument = errors.New("empty document")

// Chunker cuts text into windows of Size runes, each window starting
// Size-Overlap runes after the previous one.
type Chunker struct {
	size    int
	overlap int
}

// New returns a Chunker. size must be at least 2 and overlap must be in [0, size).
func New(size, overlap int) (*Chunker, error) {
	if size < 2 {
		return nil, fmt.Errorf("chunk size must be at least 2, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the target chunk length in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of runes shared by consecutive chunks.
func (c *Chunker) Overlap() int { return c.overlap }

// Normalize converts line endings, collapses every whitespace run to a single
// space and trims the result.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// Split normalizes text and returns its chunks in order.
// Every chunk except the last is exactly Size runes long.
func (c *Chunker) Split(text string) ([]string, error) {
	runes := []rune(Normalize(text))
	if len(runes) == 0 {
		return nil, ErrEmptyDocument
	}

	var chunks []string
	start := 0
	for {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		// The last window always extends past end, so it is longer than overlap.
		start = end - c.overlap
	}
	return chunks, nil
}

// Join reverses Split: it concatenates chunks, dropping the overlap prefix of
// every chunk after the first.
func Join(chunks []string, overlap int) string {
	var sb strings.Builder
	for i, ch := range chunks {
		if i == 0 {
			sb.WriteString(ch)
			continue
		}
		r := []rune(ch)
		if overlap < len(r) {
			sb.WriteString(string(r[overlap:]))
		}
	}
	return sb.String()
}
