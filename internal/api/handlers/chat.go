// HTTP handler for the support chat endpoint. A governance denial surfaces
// as 403 with the denial reason; the conversation turn is not executed.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/matiasleandrokruk/acmedesk/internal/domain/governance"
	"github.com/matiasleandrokruk/acmedesk/internal/domain/support"
	"github.com/matiasleandrokruk/acmedesk/internal/infra/llm"
)

// ChatService is the contract the chat handler depends on.
// support.AgentService satisfies it.
type ChatService interface {
	Chat(ctx context.Context, in support.ChatInput) (*support.ChatResult, error)
}

// ChatHandler handles POST /api/v1/support/chat.
type ChatHandler struct {
	chatService ChatService
}

// NewChatHandler creates a ChatHandler backed by the provided service.
func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatRequest struct {
	Message string        `json:"message"`
	History []chatMessage `json:"history,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Reply      string   `json:"reply"`
	ToolsUsed  []string `json:"toolsUsed,omitempty"`
	ToolRounds int      `json:"toolRounds"`
}

// Chat handles POST /api/v1/support/chat.
//
// Response codes:
//   - 200 OK: agent produced a reply
//   - 400 Bad Request: invalid JSON or empty message
//   - 401 Unauthorized: missing auth context
//   - 403 Forbidden: the model requested a denylisted tool; the whole turn is blocked
//   - 500 Internal Server Error: provider or tool failure
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if _, err := getUserID(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	if _, err := getWorkspaceID(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, "missing workspace context")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	history := make([]llm.Message, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	result, err := h.chatService.Chat(r.Context(), support.ChatInput{
		Message: req.Message,
		History: history,
	})
	if err != nil {
		if denied, ok := governance.AsDenied(err); ok {
			writeError(w, denied.StatusCode(), denied.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:      result.Reply,
		ToolsUsed:  result.ToolsUsed,
		ToolRounds: result.ToolRounds,
	})
}
