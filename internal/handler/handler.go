package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/k-negishi/whatsapp-events-bot/internal/domain"
	"github.com/k-negishi/whatsapp-events-bot/internal/protocol"
	"github.com/k-negishi/whatsapp-events-bot/internal/usecase"
)

// MessageDispatcher 受信メッセージを処理するユースケース
type MessageDispatcher interface {
	Dispatch(ctx context.Context, msg domain.InboundMessage) usecase.Outcome
}

// EventReader イベントを1件取得する
type EventReader interface {
	Get(ctx context.Context, id string) (*domain.Event, error)
}

// Handler Webhookと読み取りAPIのHTTPハンドラー
type Handler struct {
	dispatcher MessageDispatcher
	events     EventReader
	log        *slog.Logger
}

type messageResponse struct {
	Message string `json:"message"`
	Command string `json:"command,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// eventResponse 読み取りAPIのレスポンス。フロントエンドが参照するキー名に合わせる
type eventResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Date        string `json:"date"`
	ImageURL    string `json:"image_url"`
}

// New ハンドラーを作成
func New(dispatcher MessageDispatcher, events EventReader, log *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		events:     events,
		log:        log.With("component", "handler"),
	}
}

// Webhook Twilio Webhookの本文を処理し、ステータスとレスポンスを返す
//
// 送信者が取得できない場合のみ400を返す。それ以外は処理結果に関わらず200を返し、
// Twilio側の再送 (受付メッセージの重複送信) を防ぐ。
func (h *Handler) Webhook(ctx context.Context, payload string) (int, any) {
	msg, err := protocol.Parse(payload)
	if err != nil {
		h.log.Error("送信者のないメッセージを受信しました", "error", err)
		return http.StatusBadRequest, errorResponse{Error: "Phone number is required."}
	}

	outcome := h.dispatcher.Dispatch(ctx, msg)
	h.log.Info("メッセージを処理しました",
		"sender", msg.Sender,
		"command", outcome.Command.String(),
		"failed", outcome.Err != nil,
		"reply_failed", outcome.ReplyErr != nil,
	)

	return http.StatusOK, messageResponse{Message: "Message processed", Command: outcome.Command.String()}
}

// Event イベントを1件取得し、ステータスとレスポンスを返す
func (h *Handler) Event(ctx context.Context, id string) (int, any) {
	if id == "" {
		return http.StatusNotFound, errorResponse{Error: "Event not found"}
	}

	event, err := h.events.Get(ctx, id)
	if errors.Is(err, domain.ErrEventNotFound) {
		return http.StatusNotFound, errorResponse{Error: "Event not found"}
	}
	if err != nil {
		h.log.Error("イベントの取得に失敗しました", "event_id", id, "error", err)
		return http.StatusInternalServerError, errorResponse{Error: "Internal server error"}
	}

	return http.StatusOK, eventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		Address:     event.Address,
		Date:        event.Date,
		ImageURL:    event.ImageURL,
	}
}
