package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/garnizeh/studybuddy/internal/chats"
	"github.com/garnizeh/studybuddy/internal/messages"
	"github.com/garnizeh/studybuddy/internal/profiles"
	"github.com/garnizeh/studybuddy/internal/session"
	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/models"
)

const (
	streamWriteTimeout = 10 * time.Second
	// largest client frame read before the socket is closed; the message schema caps the
	// text itself
	streamMaxFrame = 16 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// origins are enforced by the CORS layer and the token, not the handshake
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type MessagesHandler struct {
	chats        *chats.Registry
	messages     *messages.Log
	profiles     *profiles.Service
	streams      *Streams
	pollInterval time.Duration
}

func NewMessagesHandler(c *chats.Registry, m *messages.Log, p *profiles.Service, streams *Streams, pollInterval time.Duration) *MessagesHandler {
	if streams == nil {
		streams = NewStreams(context.Background())
	}
	return &MessagesHandler{chats: c, messages: m, profiles: p, streams: streams, pollInterval: pollInterval}
}

type messagesResponse struct {
	Messages []models.ChatMessage `json:"messages"`
}

type messageResponse struct {
	Message *models.ChatMessage `json:"message"`
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// streamFrame is pushed to websocket clients.
type streamFrame struct {
	Type     string               `json:"type"`
	Messages []models.ChatMessage `json:"messages"`
	Error    string               `json:"error,omitempty"`
}

// chatForCaller resolves the chat in the path and checks the caller takes part in it.
func (h *MessagesHandler) chatForCaller(r *http.Request) (*models.Chat, string, error) {
	chatID, err := chatIDVar(r)
	if err != nil {
		return nil, "", err
	}
	userID := session.UserID(r.Context())
	c, err := h.chats.GetFor(r.Context(), chatID, userID)
	if err != nil {
		return nil, "", err
	}
	return c, userID, nil
}

// senderName is the name messages are stored under. Sending requires a profile.
func (h *MessagesHandler) senderName(ctx context.Context, userID string) (string, error) {
	name, err := viewerName(ctx, h.profiles, userID)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", errorx.Validation("create your profile before sending messages")
	}
	return name, nil
}

func (h *MessagesHandler) History(w http.ResponseWriter, r *http.Request) {
	c, _, err := h.chatForCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	msgs, err := h.messages.History(r.Context(), c.ChatID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{Messages: msgs})
}

// Send appends a message. A blank message is dropped with 204.
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	c, userID, err := h.chatForCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(r, "message", &req); err != nil {
		writeError(w, err)
		return
	}

	name, err := h.senderName(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	m, err := h.messages.Send(r.Context(), c.ChatID, name, req.Message)
	if errors.Is(err, errorx.ErrEmptyMessage) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: m})
}

// Stream upgrades to a websocket and pushes the chat history whenever it changes. Clients may
// send {"message": "..."} frames on the same socket.
func (h *MessagesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	c, userID, err := h.chatForCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	serverCtx, finish, ok := h.streams.begin()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "server is shutting down", Kind: errorx.KindInternal.String()})
		return
	}
	defer finish()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		logger.Warn("websocket upgrade failed", slog.Int64("chat_id", c.ChatID), slog.Any("err", err))
		return
	}

	conn.SetReadLimit(streamMaxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(h.streams.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.streams.PongWait))
	})

	ctx, cancel := context.WithCancel(serverCtx)
	updates := make(chan []models.ChatMessage, 1)
	outgoing := make(chan streamFrame, 8)

	poller := h.messages.HistoryPoller(c.ChatID, h.pollInterval, func(msgs []models.ChatMessage) {
		// keep only the newest snapshot; the poller is the only producer
		select {
		case <-updates:
		default:
		}
		updates <- msgs
	})
	poller.Start(ctx)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer cancel()
		h.readFrames(ctx, conn, c.ChatID, userID, outgoing)
	}()

	ping := time.NewTicker(h.streams.PingPeriod)
	defer ping.Stop()

	var last []models.ChatMessage
	sent := false
	for done := false; !done; {
		var frame streamFrame
		select {
		case <-ctx.Done():
			done = true
			continue
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				done = true
			}
			continue
		case msgs := <-updates:
			if sent && !messages.Changed(last, msgs) {
				continue
			}
			last, sent = msgs, true
			frame = streamFrame{Type: "snapshot", Messages: msgs}
		case frame = <-outgoing:
		}

		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			done = true
		}
	}

	cancel()
	poller.Stop()
	_ = conn.Close()
	<-readDone
}

// readFrames handles client frames until the socket fails or the read deadline passes.
// Frames are validated like the HTTP send body. Only the writer loop writes to conn; replies
// go through out.
func (h *MessagesHandler) readFrames(ctx context.Context, conn *websocket.Conn, chatID int64, userID string, out chan<- streamFrame) {
	reply := func(f streamFrame) {
		select {
		case out <- f:
		case <-ctx.Done():
		}
	}

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.streams.PongWait))

		var in sendMessageRequest
		if err := decodeBytes(ctx, b, "message", &in); err != nil {
			reply(streamFrame{Type: "error", Error: publicMessage(err)})
			continue
		}

		name, err := h.senderName(ctx, userID)
		if err != nil {
			reply(streamFrame{Type: "error", Error: publicMessage(err)})
			continue
		}
		if _, err := h.messages.Send(ctx, chatID, name, in.Message); err != nil && !errors.Is(err, errorx.ErrEmptyMessage) {
			reply(streamFrame{Type: "error", Error: publicMessage(err)})
		}
	}
}
