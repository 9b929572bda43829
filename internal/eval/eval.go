// Package eval runs a fixed set of questions against an indexed corpus and
// checks that retrieval finds the expected source and the answer mentions
// the expected keyword.
package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/docsearch/internal/search"
)

// Case is one evaluation question. ExpectRetrieval is false for out-of-scope
// questions: whatever they retrieve is irrelevant and only the answer is checked.
type Case struct {
	Question        string `yaml:"question"`
	ExpectedKeyword string `yaml:"expected_keyword,omitempty"`
	ExpectedSource  string `yaml:"expected_source,omitempty"`
	ExpectRetrieval bool   `yaml:"expect_retrieval"`
	Mode            string `yaml:"mode,omitempty"`
}

type casesFile struct {
	Cases []Case `yaml:"cases"`
}

// LoadCases reads a YAML cases file.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cases: %w", err)
	}
	var f casesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing cases %s: %w", path, err)
	}
	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("no cases in %s", path)
	}
	for i, c := range f.Cases {
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("case %d in %s has no question", i+1, path)
		}
		if _, err := search.ParseMode(c.Mode); err != nil {
			return nil, fmt.Errorf("case %d in %s: %w", i+1, path, err)
		}
	}
	return f.Cases, nil
}

// Status is the outcome of one case.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusCheck Status = "CHECK"
	StatusError Status = "ERROR"
)

// Result records what happened for one case.
type Result struct {
	Case          Case
	TopSource     string
	TopSimilarity float64
	RetrievalTime time.Duration
	AnswerTime    time.Duration
	Answer        string
	RetrievalOK   bool
	AnswerOK      bool
	Err           error
}

func (r Result) Status() Status {
	switch {
	case r.Err != nil:
		return StatusError
	case r.RetrievalOK && r.AnswerOK:
		return StatusPass
	default:
		return StatusCheck
	}
}

// Runner evaluates cases against a search service.
type Runner struct {
	svc    *search.Service
	topK   int
	logger *slog.Logger
}

// NewRunner returns a Runner that retrieves topK chunks per question.
func NewRunner(svc *search.Service, topK int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{svc: svc, topK: topK, logger: logger}
}

// Run evaluates every case in order. Cases run one at a time so the reported
// timings are not skewed by each other.
func (r *Runner) Run(ctx context.Context, cases []Case) []Result {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		if ctx.Err() != nil {
			results = append(results, Result{Case: c, Err: ctx.Err()})
			continue
		}
		res := r.runCase(ctx, c)
		r.logger.Debug("evaluated case", "question", c.Question, "status", res.Status(), "top_source", res.TopSource)
		results = append(results, res)
	}
	return results
}

func (r *Runner) runCase(ctx context.Context, c Case) Result {
	res := Result{Case: c}

	start := time.Now()
	chunks, err := r.svc.Engine().Query(ctx, c.Question, r.topK)
	res.RetrievalTime = time.Since(start)
	if err != nil {
		res.Err = fmt.Errorf("retrieval: %w", err)
		return res
	}
	if len(chunks) > 0 {
		res.TopSource = chunks[0].Chunk.Source
		res.TopSimilarity = chunks[0].Similarity
	}
	res.RetrievalOK = !c.ExpectRetrieval ||
		(len(chunks) > 0 && (c.ExpectedSource == "" || res.TopSource == c.ExpectedSource))

	start = time.Now()
	resp, err := r.svc.Search(ctx, c.Question, c.Mode)
	res.AnswerTime = time.Since(start)
	if err != nil {
		res.Err = fmt.Errorf("answer: %w", err)
		return res
	}
	res.Answer = answerOf(resp)
	res.AnswerOK = c.ExpectedKeyword == "" ||
		strings.Contains(strings.ToLower(res.Answer), strings.ToLower(c.ExpectedKeyword))
	return res
}

func answerOf(resp search.Response) string {
	switch r := resp.(type) {
	case search.SimpleResponse:
		return r.Answer
	case search.AgenticResponse:
		return r.Answer
	default:
		return ""
	}
}

// Summary counts results by status.
type Summary struct {
	Total, Passed, Checks, Errors int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d passed, %d to check, %d errors", s.Passed, s.Total, s.Checks, s.Errors)
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status() {
		case StatusPass:
			s.Passed++
		case StatusCheck:
			s.Checks++
		case StatusError:
			s.Errors++
		}
	}
	return s
}

// ErrNotAllPassed is returned by Check when a case did not pass.
var ErrNotAllPassed = errors.New("not all evaluation cases passed")

// Check returns ErrNotAllPassed unless every result passed.
func Check(results []Result) error {
	if s := Summarize(results); s.Passed != s.Total {
		return fmt.Errorf("%w: %s", ErrNotAllPassed, s)
	}
	return nil
}
