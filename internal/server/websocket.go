package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/docsearch/internal/search"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming websocket message format.
type wsRequest struct {
	ID    string `json:"id,omitempty"` // echoed back; assigned when empty
	Query string `json:"query"`
	Mode  string `json:"mode"`
}

// wsResponse is the outgoing websocket message format.
type wsResponse struct {
	Type    string          `json:"type"` // "response" or "error"
	ID      string          `json:"id"`
	Mode    search.Mode     `json:"mode,omitempty"`
	Payload search.Response `json:"payload,omitempty"`
	Kind    search.Kind     `json:"kind,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", "error", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.send(conn, wsResponse{Type: "error", Kind: search.KindInvalidInput, Error: "invalid message format"})
			continue
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}

		resp, err := s.svc.Search(r.Context(), req.Query, req.Mode)
		if err != nil {
			s.send(conn, wsResponse{Type: "error", ID: req.ID, Kind: search.Classify(err), Error: err.Error()})
			continue
		}
		s.send(conn, wsResponse{Type: "response", ID: req.ID, Mode: resp.Mode(), Payload: resp})
	}
}

func (s *Server) send(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.logger.Warn("websocket write", "error", err)
	}
}
