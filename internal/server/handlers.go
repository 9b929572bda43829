package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/ziadkadry99/docsearch/internal/chunker"
	"github.com/ziadkadry99/docsearch/internal/loader"
	"github.com/ziadkadry99/docsearch/internal/search"
)

type healthResponse struct {
	Status        string   `json:"status"`
	ChunksIndexed int      `json:"chunks_indexed"`
	Sources       []string `json:"sources"`
}

type ingestRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type ingestResponse struct {
	Source        string `json:"source"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

type uploadResponse struct {
	Message       string `json:"message"`
	Filename      string `json:"filename"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type searchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Kind  search.Kind `json:"kind"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "docsearch is running. POST /api/search to ask questions.",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	store := s.svc.Engine().Store()
	sources := store.Sources()
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		ChunksIndexed: store.Count(),
		Sources:       sources,
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid JSON body")
		return
	}

	n, err := s.svc.Ingest(r.Context(), req.Text, req.Source)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{Source: req.Source, ChunksIndexed: n})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB),
				Kind:  search.KindInvalidInput,
			})
			return
		}
		writeInvalid(w, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !loader.Supported(filename) {
		writeUnsupported(w, filename)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, fmt.Errorf("reading upload: %w", err))
		return
	}
	if !loader.IsText(data) {
		writeUnsupported(w, filename)
		return
	}

	n, err := s.svc.Ingest(r.Context(), string(data), filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Message:       fmt.Sprintf("Processed %s. Indexed %d chunks.", filename, n),
		Filename:      filename,
		ChunksIndexed: n,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid JSON body")
		return
	}

	resp, err := s.svc.Simple(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid JSON body")
		return
	}

	resp, err := s.svc.Search(r.Context(), req.Query, req.Mode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch search.Classify(err) {
	case search.KindInvalidInput:
		if errors.Is(err, chunker.ErrEmptyDocument) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case search.KindNoData:
		return http.StatusConflict
	case search.KindProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := search.Classify(err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "kind", kind)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeInvalid(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: search.KindInvalidInput})
}

func writeUnsupported(w http.ResponseWriter, filename string) {
	writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{
		Error: fmt.Sprintf("%s: only plain-text files (.txt, .md, .text) are supported", filename),
		Kind:  search.KindInvalidInput,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
