package vectordb

import (
	"fmt"
	"strings"
)

const previewChars = 200

// FormatResults renders search results as human-readable text.
func FormatResults(results []ScoredChunk) string {
	if len(results) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "--- Result %d (similarity: %.4f) ---\n", i+1, r.Similarity)
		fmt.Fprintf(&sb, "Source: %s (chunk %d)\n", r.Chunk.Source, r.Chunk.Position)
		sb.WriteString(preview(r.Chunk.Text))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewChars {
		return text
	}
	return string(r[:previewChars]) + "..."
}
