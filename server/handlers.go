package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"driftway/auth"
	"driftway/domain"
	"driftway/errors"
	"driftway/repositories"
	"driftway/server/middleware"

	"github.com/samber/lo"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), errorResponse{
		Error: err.Error(),
		Code:  errors.WireCode(err),
	})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "BAD_REQUEST"})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (a *App) handleUp(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "up"})
}

func (a *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	userID, err := a.authService.Register(req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": userID})
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	meta, ok := middleware.MetadataFrom(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req auth.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := auth.ValidateLogin(req); err != nil {
		writeBadRequest(w, err)
		return
	}

	credential, err := a.authService.Login(req.Email, req.Password, meta.Origin)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    credential,
		Path:     "/",
		Expires:  time.Now().Add(a.cfg.SessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"credential": credential})
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.authService.Logout(middleware.CredentialFrom(r)); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

type conversationResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Participants  []string `json:"participants"`
	IsEncrypted   bool     `json:"is_encrypted"`
	LastMessageID string   `json:"last_message_id,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

func toConversationResponse(c domain.Conversation) conversationResponse {
	return conversationResponse{
		ID:            c.ID,
		Name:          c.Name,
		Participants:  c.Participants,
		IsEncrypted:   c.IsEncrypted,
		LastMessageID: c.LastMessageID,
		CreatedAt:     c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (a *App) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	meta, _ := middleware.MetadataFrom(r.Context())

	var req auth.CreateConversationRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := auth.ValidateCreateConversation(req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if !lo.Contains(req.Participants, meta.Identity.ID) {
		writeError(w, errors.ErrNotAParticipant)
		return
	}

	conversation, err := a.conversations.CreateConversation(req.Name, req.Participants)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toConversationResponse(conversation))
}

func (a *App) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	meta, _ := middleware.MetadataFrom(r.Context())
	conversationID := r.PathValue("id")

	if !a.requireParticipant(w, conversationID, meta.Identity.ID) {
		return
	}

	conversation, err := a.conversations.GetConversation(conversationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConversationResponse(conversation))
}

type messagesResponse struct {
	Messages   []envelopePayload `json:"messages"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

func (a *App) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	meta, _ := middleware.MetadataFrom(r.Context())
	conversationID := r.PathValue("id")

	if !a.requireParticipant(w, conversationID, meta.Identity.ID) {
		return
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	messages, next, err := a.chatService.GetMessages(conversationID, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{
		Messages: lo.Map(messages, func(m domain.MessageEnvelope, _ int) envelopePayload {
			return envelopeToWire(m, "")
		}),
		NextCursor: next,
	})
}

type searchHitPayload struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Content        string `json:"content"`
	At             string `json:"at"`
}

type searchResponse struct {
	Results []searchHitPayload `json:"results"`
	Total   uint64             `json:"total"`
}

func (a *App) handleSearchMessages(w http.ResponseWriter, r *http.Request) {
	meta, _ := middleware.MetadataFrom(r.Context())

	query := r.URL.Query().Get("query")
	if query == "" {
		writeBadRequest(w, stderrors.New("query parameter is required"))
		return
	}
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		writeBadRequest(w, stderrors.New("conversation_id parameter is required"))
		return
	}
	page := 0
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 0 {
			writeBadRequest(w, stderrors.New("page must be a non-negative integer"))
			return
		}
		page = parsed
	}

	if !a.requireParticipant(w, conversationID, meta.Identity.ID) {
		return
	}

	hits, total, err := a.chatService.SearchMessages(r.Context(), query, conversationID, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Results: lo.Map(hits, func(h repositories.SearchHit, _ int) searchHitPayload {
			return searchHitPayload{
				MessageID:      h.MessageID,
				ConversationID: h.ConversationID,
				SenderID:       h.SenderID,
				Content:        h.Content,
				At:             h.At.UTC().Format(time.RFC3339Nano),
			}
		}),
		Total: total,
	})
}

type keyBundleResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Bundle         string `json:"bundle"`
	CreatedBy      string `json:"created_by"`
	CreatedAt      string `json:"created_at"`
	IsActive       bool   `json:"is_active"`
}

func toKeyBundleResponse(b domain.KeyBundle) keyBundleResponse {
	return keyBundleResponse{
		ID:             b.ID,
		ConversationID: b.ConversationID,
		Bundle:         b.Bundle,
		CreatedBy:      b.CreatedBy,
		CreatedAt:      b.CreatedAt.UTC().Format(time.RFC3339Nano),
		IsActive:       b.IsActive,
	}
}

func (a *App) handleActivateKey(w http.ResponseWriter, r *http.Request) {
	meta, _ := middleware.MetadataFrom(r.Context())
	conversationID := r.PathValue("id")

	var req auth.ActivateKeyRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := auth.ValidateActivateKey(req); err != nil {
		writeBadRequest(w, err)
		return
	}

	bundle, err := a.keyService.Activate(conversationID, req.KeyBundle, meta.Identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toKeyBundleResponse(bundle))
}

func (a *App) handleGetKey(w http.ResponseWriter, r *http.Request) {
	meta, _ := middleware.MetadataFrom(r.Context())
	conversationID := r.PathValue("id")

	if !a.requireParticipant(w, conversationID, meta.Identity.ID) {
		return
	}

	bundle, err := a.keyService.GetActive(conversationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toKeyBundleResponse(bundle))
}

func (a *App) handleDeactivateKey(w http.ResponseWriter, r *http.Request) {
	meta, _ := middleware.MetadataFrom(r.Context())
	conversationID := r.PathValue("id")

	if !a.requireParticipant(w, conversationID, meta.Identity.ID) {
		return
	}

	if err := a.keyService.Deactivate(conversationID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireParticipant gates a conversation-scoped route on membership.
// Reports false after writing the failure response.
func (a *App) requireParticipant(w http.ResponseWriter, conversationID, userID string) bool {
	ok, err := a.conversations.IsParticipant(conversationID, userID)
	if err != nil {
		writeError(w, err)
		return false
	}
	if !ok {
		writeError(w, errors.ErrNotAParticipant)
		return false
	}
	return true
}
