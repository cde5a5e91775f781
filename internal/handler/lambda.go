package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/k-negishi/whatsapp-events-bot/internal/protocol"
)

const (
	webhookPath   = "/messages"
	eventPathRoot = "/event/"
)

// corsHeaders フロントエンドから読み取りAPIを呼ぶためのヘッダー
var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Allow-Methods": "OPTIONS,POST,GET",
}

// HandleAPIGateway API Gatewayのプロキシイベントを振り分けるLambdaハンドラー
//
// 処理結果はすべてレスポンスで返し、Lambdaとしてのエラーは返さない。
func (h *Handler) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch {
	case req.HTTPMethod == http.MethodOptions:
		return jsonResponse(http.StatusNoContent, nil), nil

	case req.HTTPMethod == http.MethodPost && routePath(req) == webhookPath:
		body, err := protocol.DecodeBody(req.Body, req.IsBase64Encoded)
		if err != nil {
			h.log.Error("Webhook本文の読み込みに失敗しました", "error", err)
			return jsonResponse(http.StatusBadRequest, errorResponse{Error: "Invalid request body"}), nil
		}
		return jsonResponse(h.Webhook(ctx, body)), nil

	case req.HTTPMethod == http.MethodGet && strings.HasPrefix(req.Path, eventPathRoot):
		id := req.PathParameters["id"]
		if id == "" {
			id = strings.TrimPrefix(req.Path, eventPathRoot)
		}
		return jsonResponse(h.Event(ctx, id)), nil

	default:
		return jsonResponse(http.StatusNotFound, errorResponse{Error: "Not found"}), nil
	}
}

// routePath リソース定義があればそれを、なければリクエストパスを返す
func routePath(req events.APIGatewayProxyRequest) string {
	if req.Resource != "" {
		return req.Resource
	}
	return req.Path
}

func jsonResponse(status int, payload any) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(corsHeaders))
	for k, v := range corsHeaders {
		headers[k] = v
	}

	if payload == nil {
		return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"error":"Internal server error"}`,
		}
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(body)}
}
