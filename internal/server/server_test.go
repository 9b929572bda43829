package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/docsearch/internal/agent"
	"github.com/ziadkadry99/docsearch/internal/chunker"
	"github.com/ziadkadry99/docsearch/internal/embeddings"
	"github.com/ziadkadry99/docsearch/internal/llm"
	"github.com/ziadkadry99/docsearch/internal/rag"
	"github.com/ziadkadry99/docsearch/internal/search"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

type downProvider struct{}

func (downProvider) Name() string { return "down" }
func (downProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return nil, errors.New("connection refused")
}

func newTestServer(t *testing.T, provider llm.Provider) *Server {
	t.Helper()
	ch, err := chunker.New(chunker.DefaultSize, chunker.DefaultOverlap)
	if err != nil {
		t.Fatalf("chunker: %v", err)
	}
	gen := llm.NewGenerator(provider, "", 5*time.Second, 0)
	engine := rag.NewEngine(vectordb.NewMemoryStore(0), embeddings.NewHashingEmbedder(0), gen, ch, rag.Options{EmbedTimeout: 5 * time.Second})
	ag := agent.New(engine, gen, agent.Options{TopK: 5, SummaryTopK: 10, EvidenceLimit: 3, MaxExcerptChars: 300, MaxConcurrency: 2})
	return New(Config{MaxUploadMB: 1}, search.NewService(engine, ag, 3, nil), nil)
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return v
}

func ingest(t *testing.T, srv *Server, text, source string) {
	t.Helper()
	body := fmt.Sprintf(`{"text":%q,"source":%q}`, text, source)
	if w := do(t, srv, "POST", "/api/ingest", body); w.Code != http.StatusOK {
		t.Fatalf("ingest %s: %d %s", source, w.Code, w.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, llm.NewExtractiveProvider())

	w := do(t, srv, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[healthResponse](t, w)
	if body.Status != "ok" || body.ChunksIndexed != 0 || body.Sources == nil {
		t.Errorf("unexpected empty health: %+v", body)
	}

	ingest(t, srv, "Refunds are accepted within 30 days of purchase.", "refund.txt")
	body = decode[healthResponse](t, do(t, srv, "GET", "/healthz", ""))
	if body.ChunksIndexed != 1 || len(body.Sources) != 1 || body.Sources[0] != "refund.txt" {
		t.Errorf("unexpected health after ingest: %+v", body)
	}
}

func TestCORSHeaders(t *testing.T) {
	base := newTestServer(t, llm.NewExtractiveProvider())
	srv := New(Config{AllowAll: true}, base.svc, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(t, llm.NewExtractiveProvider())
	ingest(t, srv, "Refunds are accepted within 30 days of purchase.", "refund.txt")

	w := do(t, srv, "POST", "/api/query", `{"query":"What is the refund window?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[search.SimpleResponse](t, w)
	if !strings.Contains(resp.Answer, "30 days") {
		t.Errorf("answer missing refund window: %q", resp.Answer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "refund.txt" {
		t.Errorf("unexpected sources: %v", resp.Sources)
	}
}

func TestSearchEndpointAgentic(t *testing.T) {
	srv := newTestServer(t, llm.NewExtractiveProvider())
	ingest(t, srv, "Refunds are accepted within 30 days of purchase.", "refund.txt")
	ingest(t, srv, "Cancellations must occur 24 hours before service.", "cancel.txt")

	w := do(t, srv, "POST", "/api/search", `{"query":"Compare refund and cancellation policies","mode":"agentic"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[search.AgenticResponse](t, w)
	if resp.Intent != agent.IntentCompare {
		t.Errorf("expected compare intent, got %q", resp.Intent)
	}
	if len(resp.AgentPlan.SearchQueries) != 2 {
		t.Errorf("expected 2 sub-queries, got %v", resp.AgentPlan.SearchQueries)
	}
}

func TestSearchEndpointErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
		path     string
		body     string
		seed     bool
		status   int
		kind     search.Kind
	}{
		{"bad mode", llm.NewExtractiveProvider(), "/api/search", `{"query":"x","mode":"psychic"}`, false, http.StatusBadRequest, search.KindInvalidInput},
		{"bad json", llm.NewExtractiveProvider(), "/api/search", `{"query":`, false, http.StatusBadRequest, search.KindInvalidInput},
		{"blank query", llm.NewExtractiveProvider(), "/api/search", `{"query":"   "}`, true, http.StatusBadRequest, search.KindInvalidInput},
		{"empty document", llm.NewExtractiveProvider(), "/api/ingest", `{"text":"  ","source":"a.txt"}`, false, http.StatusUnprocessableEntity, search.KindInvalidInput},
		{"missing source", llm.NewExtractiveProvider(), "/api/ingest", `{"text":"hello"}`, false, http.StatusBadRequest, search.KindInvalidInput},
		{"provider down", downProvider{}, "/api/query", `{"query":"refund window?"}`, true, http.StatusServiceUnavailable, search.KindProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.provider)
			if tt.seed {
				ingest(t, srv, "Refunds are accepted within 30 days of purchase.", "refund.txt")
			}
			w := do(t, srv, "POST", tt.path, tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			body := decode[errorResponse](t, w)
			if body.Kind != tt.kind || body.Error == "" {
				t.Errorf("unexpected error body: %+v", body)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{vectordb.ErrEmptyStore, http.StatusConflict},
		{search.ErrInvalidMode, http.StatusBadRequest},
		{chunker.ErrEmptyDocument, http.StatusUnprocessableEntity},
		{embeddings.ErrEmbeddingUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func upload(t *testing.T, srv *Server, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestUpload(t *testing.T) {
	srv := newTestServer(t, llm.NewExtractiveProvider())

	w := upload(t, srv, "cancel.txt", []byte("Cancellations must occur 24 hours before service."))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[uploadResponse](t, w)
	if resp.Filename != "cancel.txt" || resp.ChunksIndexed != 1 {
		t.Errorf("unexpected upload response: %+v", resp)
	}
	if got := srv.svc.Engine().Store().Sources(); len(got) != 1 || got[0] != "cancel.txt" {
		t.Errorf("unexpected sources: %v", got)
	}
}

func TestUploadRejectsNonText(t *testing.T) {
	srv := newTestServer(t, llm.NewExtractiveProvider())

	if w := upload(t, srv, "report.pdf", []byte("%PDF-1.4")); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("pdf: expected 415, got %d", w.Code)
	}
	if w := upload(t, srv, "binary.txt", []byte{0x00, 0x01, 0x02}); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("binary: expected 415, got %d", w.Code)
	}
	if srv.svc.Engine().Store().Count() != 0 {
		t.Error("rejected uploads must not be indexed")
	}
}

func TestWebSocketSearch(t *testing.T) {
	srv := newTestServer(t, llm.NewExtractiveProvider())
	ingest(t, srv, "Refunds are accepted within 30 days of purchase.", "refund.txt")

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsRequest{ID: "q1", Query: "What is the refund window?", Mode: "simple"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp struct {
		Type    string                `json:"type"`
		ID      string                `json:"id"`
		Mode    search.Mode           `json:"mode"`
		Payload search.SimpleResponse `json:"payload"`
	}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "response" || resp.ID != "q1" || resp.Mode != search.ModeSimple {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	if !strings.Contains(resp.Payload.Answer, "30 days") {
		t.Errorf("unexpected answer: %q", resp.Payload.Answer)
	}

	if err := conn.WriteJSON(wsRequest{Query: "x", Mode: "psychic"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var errResp wsResponse
	if err := conn.ReadJSON(&errResp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if errResp.Type != "error" || errResp.Kind != search.KindInvalidInput || errResp.ID == "" {
		t.Errorf("unexpected error envelope: %+v", errResp)
	}
}
