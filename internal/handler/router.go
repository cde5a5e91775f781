package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxWebhookBodySize Webhook本文の上限 (1 MB)
const maxWebhookBodySize = 1 << 20

// NewRouter ローカル実行用のHTTPルーター。API Gatewayと同じパスを提供する
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post(webhookPath, h.serveWebhook)
	r.Get(eventPathRoot+"{id}", h.serveEvent)

	return r
}

func (h *Handler) serveWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error("Webhook本文の読み込みに失敗しました", "error", err, "request_id", middleware.GetReqID(r.Context()))
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	status, payload := h.Webhook(r.Context(), string(body))
	respondJSON(w, status, payload)
}

func (h *Handler) serveEvent(w http.ResponseWriter, r *http.Request) {
	status, payload := h.Event(r.Context(), chi.URLParam(r, "id"))
	respondJSON(w, status, payload)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
