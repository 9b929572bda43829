package eval

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const snippetRunes = 100

// WriteReport prints one block per result followed by the summary line.
func WriteReport(w io.Writer, results []Result) {
	fmt.Fprintf(w, "Running %d evaluation cases\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(w, "Case #%d: %s\n", i+1, r.Case.Question)
		fmt.Fprintf(w, "  Retrieval time: %s\n", r.RetrievalTime.Round(100*time.Microsecond))
		if r.TopSource != "" {
			fmt.Fprintf(w, "  Top source: %s (%.2f)\n", r.TopSource, r.TopSimilarity)
		} else {
			fmt.Fprintln(w, "  Top source: none")
		}
		if r.Err != nil {
			fmt.Fprintf(w, "  Result: %s: %v\n", r.Status(), r.Err)
		} else {
			fmt.Fprintf(w, "  Answer time: %s\n", r.AnswerTime.Round(100*time.Microsecond))
			fmt.Fprintf(w, "  Result: %s%s\n", r.Status(), reasons(r))
			fmt.Fprintf(w, "  Answer: %s\n", snippet(r.Answer))
		}
		fmt.Fprintln(w, strings.Repeat("-", 40))
	}
	fmt.Fprintln(w, Summarize(results))
}

func reasons(r Result) string {
	var why []string
	if !r.RetrievalOK {
		if r.Case.ExpectedSource != "" {
			why = append(why, "expected source "+r.Case.ExpectedSource)
		} else {
			why = append(why, "nothing retrieved")
		}
	}
	if !r.AnswerOK {
		why = append(why, fmt.Sprintf("answer lacks %q", r.Case.ExpectedKeyword))
	}
	if len(why) == 0 {
		return ""
	}
	return " (" + strings.Join(why, "; ") + ")"
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > snippetRunes {
		return string(r[:snippetRunes]) + "..."
	}
	return s
}
