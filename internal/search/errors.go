package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/docsearch/internal/agent"
	"github.com/ziadkadry99/docsearch/internal/chunker"
	"github.com/ziadkadry99/docsearch/internal/embeddings"
	"github.com/ziadkadry99/docsearch/internal/llm"
	"github.com/ziadkadry99/docsearch/internal/rag"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

// ErrInvalidMode is returned for an unrecognized search mode.
var ErrInvalidMode = errors.New("invalid search mode")

// Kind groups errors by what the caller can do about them.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindNoData              Kind = "no_data"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindInternal            Kind = "internal"
)

// Classify maps an error from ingestion or search to its Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidMode),
		errors.Is(err, rag.ErrEmptyQuery),
		errors.Is(err, rag.ErrInvalidSource),
		errors.Is(err, chunker.ErrEmptyDocument),
		errors.Is(err, vectordb.ErrDimensionMismatch),
		errors.Is(err, vectordb.ErrDuplicateID):
		return KindInvalidInput
	case errors.Is(err, vectordb.ErrEmptyStore):
		return KindNoData
	case errors.Is(err, embeddings.ErrEmbeddingUnavailable),
		errors.Is(err, llm.ErrGenerationUnavailable):
		return KindProviderUnavailable
	case errors.Is(err, agent.ErrInvalidIntent), errors.Is(err, agent.ErrUnknownMethod):
		// Planner and post-processor enums out of sync.
		return KindInternal
	default:
		return KindInternal
	}
}

func invalidMode(s string) error {
	return fmt.Errorf("%w: %q (want simple or agentic)", ErrInvalidMode, s)
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
