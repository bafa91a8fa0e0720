package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bedrockchat/internal/service"
	"bedrockchat/internal/storage"
	"bedrockchat/internal/transport/http/middleware"
)

type ChatHandler struct {
	chatService *service.ChatService
	catalog     *service.ModelCatalog
	elements    *storage.ElementStore
	logger      *slog.Logger
}

func NewChatHandler(chatService *service.ChatService, catalog *service.ModelCatalog, elements *storage.ElementStore, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		catalog:     catalog,
		elements:    elements,
		logger:      logger,
	}
}

// Models lists the model ids available in the settings picker.
func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	ids, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.Error("listing models", "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM", "Could not list models")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"models": ids})
}

func (h *ChatHandler) Threads(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetIdentifier(r.Context())

	threads, err := h.chatService.ListThreads(r.Context(), user)
	if err != nil {
		h.logger.Error("listing threads", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"threads": threads})
}

func (h *ChatHandler) Thread(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetIdentifier(r.Context())
	id := r.PathValue("id")

	thread, msgs, err := h.chatService.ThreadMessages(r.Context(), user, id)
	if err != nil {
		if errors.Is(err, service.ErrThreadNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Thread not found")
			return
		}
		h.logger.Error("loading thread", "thread", id, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"thread":   thread,
		"messages": msgs,
	})
}

type createElementInput struct {
	ThreadID string `json:"thread_id"`
}

// CreateElement returns a presigned upload URL for an attachment.
func (h *ChatHandler) CreateElement(w http.ResponseWriter, r *http.Request) {
	var input createElementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ThreadID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "thread_id is required")
		return
	}

	key, url, err := h.elements.PresignUpload(r.Context(), input.ThreadID)
	if err != nil {
		h.logger.Error("presigning upload", "thread", input.ThreadID, "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM", "Could not presign upload")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"key":        key,
		"upload_url": url,
	})
}

// Element returns a presigned download URL for a stored attachment.
func (h *ChatHandler) Element(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "INVALID_KEY", "Element key is required")
		return
	}

	url, err := h.elements.PresignDownload(r.Context(), key)
	if err != nil {
		h.logger.Error("presigning download", "key", key, "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM", "Could not presign download")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"download_url": url})
}
