// Package search is the query-caller boundary: it routes a query to the
// simple or agentic path and assembles the response.
package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/ziadkadry99/docsearch/internal/agent"
	"github.com/ziadkadry99/docsearch/internal/rag"
)

// Service exposes ingestion and search over one engine and one agent.
type Service struct {
	engine     *rag.Engine
	agent      *agent.Agent
	simpleTopK int
	logger     *slog.Logger
}

// NewService creates a search service. simpleTopK is the k used on the simple path.
func NewService(engine *rag.Engine, ag *agent.Agent, simpleTopK int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{engine: engine, agent: ag, simpleTopK: simpleTopK, logger: logger}
}

// Engine returns the underlying retrieval engine.
func (s *Service) Engine() *rag.Engine { return s.engine }

// Ingest indexes text under source and returns the number of chunks stored.
func (s *Service) Ingest(ctx context.Context, text, source string) (int, error) {
	return s.engine.Ingest(ctx, text, source)
}

// Search answers query using the named mode ("simple", "rag" or "agentic").
func (s *Service) Search(ctx context.Context, query, mode string) (Response, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if m == ModeAgentic {
		return s.Agentic(ctx, query)
	}
	return s.Simple(ctx, query)
}

// Simple runs the retrieve-then-answer path.
func (s *Service) Simple(ctx context.Context, query string) (SimpleResponse, error) {
	start := time.Now()
	ans, err := s.engine.GenerateAnswer(ctx, query, s.simpleTopK)
	if err != nil {
		s.logger.Warn("simple search failed", "error", err, "kind", Classify(err))
		return SimpleResponse{}, err
	}
	s.logger.Info("simple search", "sources", len(ans.Sources), "duration", time.Since(start))
	return AssembleSimple(ans), nil
}

// Agentic runs the intent → plan → execute → post-process pipeline.
func (s *Service) Agentic(ctx context.Context, query string) (AgenticResponse, error) {
	start := time.Now()
	res, err := s.agent.Run(ctx, query)
	if err != nil {
		s.logger.Warn("agentic search failed", "error", err, "kind", Classify(err))
		return AgenticResponse{}, err
	}
	s.logger.Info("agentic search", "intent", res.Intent, "duration", time.Since(start))
	return AssembleAgentic(res), nil
}
