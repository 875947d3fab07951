package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dshills/msareview/internal/playbook"
	"github.com/dshills/msareview/internal/review"
)

const (
	wsWriteWait = 10 * time.Second
	wsReadWait  = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// wsEvent is one server-to-client message on /ws.
type wsEvent struct {
	Type      string           `json:"type"`
	Paragraph int              `json:"paragraph,omitempty"`
	Sentence  int              `json:"sentence,omitempty"`
	Label     string           `json:"label,omitempty"`
	Text      string           `json:"text,omitempty"`
	Result    *review.Result   `json:"result,omitempty"`
	Kind      review.ErrorKind `json:"kind,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// handleWS reads one draft from the client, a binary .docx or a text
// message, and streams progress events followed by a result or an error.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.maxUpload)
	if err := conn.SetReadDeadline(time.Now().Add(wsReadWait)); err != nil {
		return
	}
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		s.log.Debug("ws read failed", zap.Error(err))
		return
	}

	var paragraphs []string
	switch msgType {
	case websocket.BinaryMessage:
		paragraphs, err = parseDraft("upload.docx", data)
	default:
		paragraphs = playbook.ParseText(string(data))
	}
	if err != nil {
		s.writeEvent(conn, errorEvent(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// The client closing the socket cancels the review.
	go func() {
		defer cancel()
		_ = conn.SetReadDeadline(time.Time{})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.reviewer.ReviewDocument(ctx, paragraphs, func(p review.Progress) {
		ev := wsEvent{Type: "progress", Paragraph: p.Paragraph, Sentence: p.Sentence, Label: p.String(), Text: p.Text}
		if !s.writeEvent(conn, ev) {
			cancel()
		}
	})
	if err != nil {
		s.log.Warn("ws review failed", zap.String("kind", string(review.Kind(err))), zap.Error(err))
		s.writeEvent(conn, errorEvent(err))
		return
	}
	s.log.Info("ws document reviewed", zap.String("run_id", res.RunID), zap.Int("findings", len(res.Findings)))
	s.writeEvent(conn, wsEvent{Type: "result", Result: res})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
}

func (s *Server) writeEvent(conn *websocket.Conn, ev wsEvent) bool {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return false
	}
	if err := conn.WriteJSON(ev); err != nil {
		s.log.Debug("ws write failed", zap.Error(err))
		return false
	}
	return true
}

func errorEvent(err error) wsEvent {
	return wsEvent{Type: "error", Kind: review.Kind(err), Message: err.Error()}
}
