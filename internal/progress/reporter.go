// Package progress reports document ingestion progress on the console.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives ingestion progress, one step per document.
type Reporter interface {
	Start(total int)
	Step(source string, chunks int, err error)
	Finish() Summary
}

// Summary totals an ingestion run.
type Summary struct {
	Documents int
	Chunks    int
	Failed    int
}

func (s Summary) String() string {
	return fmt.Sprintf("ingested %d documents (%d chunks), %d failed", s.Documents, s.Chunks, s.Failed)
}

// NewReporter returns a line-oriented reporter when running under CI and a
// progress bar otherwise. Output goes to stderr.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return NewLineReporter(os.Stderr)
	}
	return NewBarReporter(os.Stderr)
}

type tally struct {
	summary Summary
	done    int
}

func (t *tally) record(chunks int, err error) {
	t.done++
	if err != nil {
		t.summary.Failed++
		return
	}
	t.summary.Documents++
	t.summary.Chunks += chunks
}

// BarReporter draws a progress bar.
type BarReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
	tally
}

func NewBarReporter(w io.Writer) *BarReporter {
	return &BarReporter{w: w}
}

func (r *BarReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription("Indexing documents"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *BarReporter) Step(source string, chunks int, err error) {
	r.record(chunks, err)
	if r.bar == nil {
		return
	}
	r.bar.Describe(source)
	_ = r.bar.Set(r.done)
}

func (r *BarReporter) Finish() Summary {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	return r.summary
}

// LineReporter prints one line per document, suitable for CI logs.
type LineReporter struct {
	w     io.Writer
	total int
	tally
}

func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

func (r *LineReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.w, "Indexing %d documents\n", total)
}

func (r *LineReporter) Step(source string, chunks int, err error) {
	r.record(chunks, err)
	if err != nil {
		fmt.Fprintf(r.w, "[%d/%d] %s: failed: %v\n", r.done, r.total, source, err)
		return
	}
	fmt.Fprintf(r.w, "[%d/%d] %s: %d chunks\n", r.done, r.total, source, chunks)
}

func (r *LineReporter) Finish() Summary {
	fmt.Fprintf(r.w, "Indexing complete: %s\n", r.summary)
	return r.summary
}
