package llm

import (
	"fmt"
	"strings"
)

// ContextBlock is one retrieved passage handed to the model.
type ContextBlock struct {
	Group  string // optional heading, e.g. the sub-query that produced the passage
	Source string
	Text   string
}

// Section markers shared by prompt builders and the extractive provider.
const (
	contextMarker  = "Context:"
	questionMarker = "Question:"
	groupPrefix    = "## "
)

// BuildPrompt renders numbered context blocks followed by the question.
// Blocks are numbered from 1 so the model can cite them as [n].
func BuildPrompt(blocks []ContextBlock, question string) string {
	var sb strings.Builder
	sb.WriteString(contextMarker)
	sb.WriteString("\n")

	group := ""
	for i, b := range blocks {
		if b.Group != "" && b.Group != group {
			group = b.Group
			fmt.Fprintf(&sb, "\n%s%s\n", groupPrefix, group)
		}
		fmt.Fprintf(&sb, "\n[%d] Source: %s\n%s\n", i+1, b.Source, strings.TrimSpace(b.Text))
	}

	sb.WriteString("\n")
	sb.WriteString(questionMarker)
	sb.WriteString(" ")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n")
	return sb.String()
}
