package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/garnizeh/studybuddy/internal/chats"
	"github.com/garnizeh/studybuddy/internal/profiles"
	"github.com/garnizeh/studybuddy/internal/session"
	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/models"
)

type ChatsHandler struct {
	chats    *chats.Registry
	profiles *profiles.Service
}

func NewChatsHandler(c *chats.Registry, p *profiles.Service) *ChatsHandler {
	return &ChatsHandler{chats: c, profiles: p}
}

// chatView is a chat as seen by one of its participants.
type chatView struct {
	models.Chat
	DisplayName   string `json:"display_name"`
	CounterpartID string `json:"counterpart_id"`
}

type chatsResponse struct {
	Chats []chatView `json:"chats"`
}

type chatResponse struct {
	Chat chatView `json:"chat"`
}

type startChatRequest struct {
	CounterpartID string `json:"counterpart_id"`
}

func viewOf(c *models.Chat, userID, viewerName string) chatView {
	return chatView{
		Chat:          *c,
		DisplayName:   chats.DisplayName(c, viewerName),
		CounterpartID: chats.ResolveCounterpart(c, userID),
	}
}

// viewerName is the caller's profile name, or "" without a profile.
func viewerName(ctx context.Context, p *profiles.Service, userID string) (string, error) {
	me, err := p.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if me == nil {
		return "", nil
	}
	return me.Name, nil
}

func chatIDVar(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["chatID"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errorx.Validation("invalid chat id")
	}
	return id, nil
}

// List returns the caller's chats, optionally filtered by the `q` query parameter.
func (h *ChatsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := session.UserID(ctx)

	list, err := h.chats.List(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	name, err := viewerName(ctx, h.profiles, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	list = chats.Filter(list, name, r.URL.Query().Get("q"))
	out := make([]chatView, 0, len(list))
	for i := range list {
		out = append(out, viewOf(&list[i], userID, name))
	}
	writeJSON(w, http.StatusOK, chatsResponse{Chats: out})
}

func (h *ChatsHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := session.UserID(ctx)

	var req startChatRequest
	if err := decodeJSON(r, "chat_start", &req); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.chats.Start(ctx, userID, req.CounterpartID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Chat: viewOf(c, userID, c.SenderName)})
}

func (h *ChatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := session.UserID(ctx)

	chatID, err := chatIDVar(r)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := h.chats.GetFor(ctx, chatID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	name, err := viewerName(ctx, h.profiles, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Chat: viewOf(c, userID, name)})
}

// Counterpart returns the other participant's profile.
func (h *ChatsHandler) Counterpart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatID, err := chatIDVar(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.chats.Counterpart(ctx, chatID, session.UserID(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p})
}
