package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ziadkadry99/docsearch/internal/search"
)

// printResponse writes resp either as indented JSON or as readable text.
func printResponse(w io.Writer, resp search.Response, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	switch r := resp.(type) {
	case search.SimpleResponse:
		fmt.Fprintf(w, "%s\n", r.Answer)
		printSources(w, r.Sources)
	case search.AgenticResponse:
		fmt.Fprintf(w, "Intent: %s (confidence %.2f)\n", r.Intent, r.Confidence)
		fmt.Fprintf(w, "Plan: %s\n", r.AgentPlan.Strategy)
		for _, a := range r.ActionsTaken {
			fmt.Fprintf(w, "  - %s\n", a)
		}
		fmt.Fprintf(w, "\n%s\n", r.Answer)
		if len(r.Evidence) > 0 {
			fmt.Fprintln(w, "\nEvidence:")
			for i, e := range r.Evidence {
				fmt.Fprintf(w, "  [%d] %s: %s\n", i+1, e.Source, oneLine(e.Excerpt))
			}
		}
		printSources(w, r.Sources)
	default:
		return fmt.Errorf("unexpected response type %T", resp)
	}
	return nil
}

func printSources(w io.Writer, sources []string) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSources: %s\n", strings.Join(sources, ", "))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
