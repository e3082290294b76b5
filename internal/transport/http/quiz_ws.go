package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"exam-service/internal/app"
	"github.com/gorilla/websocket"
)

// QuizWSHandler runs one quiz session over a websocket: the server pushes
// question frames, the client answers, and the final frame is the recorded
// summary.
type QuizWSHandler struct {
	sessions *app.SessionService
	upgrader websocket.Upgrader
}

func NewQuizWSHandler(sessions *app.SessionService) *QuizWSHandler {
	return &QuizWSHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerFrame struct {
	Text string `json:"text"`
}

type questionFrame struct {
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	Prompt string `json:"prompt"`
}

type outboundFrame[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorFrame struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection and walks the taker through the whole set.
func (h *QuizWSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	setID, err := strconv.ParseInt(r.URL.Query().Get("setId"), 10, 64)
	name := r.URL.Query().Get("name")
	if err != nil || name == "" {
		http.Error(w, "missing or invalid setId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// The session must not die with the request context once the socket is up.
	ctx := context.Background()

	session, err := h.sessions.Start(ctx, setID, name)
	if err != nil {
		writeFrame(conn, "error", errorFrame{Message: err.Error()})
		return
	}
	total := len(session.Questions)

	for {
		prompt, index, done, err := h.sessions.Current(ctx, session.Token)
		if err != nil {
			writeFrame(conn, "error", errorFrame{Message: err.Error()})
			return
		}
		if done {
			break
		}
		if err := writeFrame(conn, "question", questionFrame{Index: index, Total: total, Prompt: prompt}); err != nil {
			return
		}

		answer, ok := h.readAnswer(conn)
		if !ok {
			return
		}
		outcome, err := h.sessions.Submit(ctx, session.Token, answer)
		if err != nil {
			writeFrame(conn, "error", errorFrame{Message: err.Error()})
			return
		}
		if err := writeFrame(conn, "graded", outcome); err != nil {
			return
		}
	}

	summary, err := h.sessions.Finish(ctx, session.Token)
	if err != nil {
		writeFrame(conn, "error", errorFrame{Message: err.Error()})
		return
	}
	writeFrame(conn, "summary", summary)
}

// readAnswer blocks until the client sends an answer frame. Other frame
// types are ignored.
func (h *QuizWSHandler) readAnswer(conn *websocket.Conn) (string, bool) {
	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return "", false
		}
		if frame.Type != "answer" {
			continue
		}
		var payload answerFrame
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			writeFrame(conn, "error", errorFrame{Message: "malformed answer payload"})
			continue
		}
		return payload.Text, true
	}
}

func writeFrame[T any](conn *websocket.Conn, frameType string, payload T) error {
	return conn.WriteJSON(outboundFrame[T]{Type: frameType, Payload: payload})
}
