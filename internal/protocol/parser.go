package protocol

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/k-negishi/whatsapp-events-bot/internal/domain"
)

// Twilio Webhookのフォームキー
const (
	keyFrom     = "From"
	keyBody     = "Body"
	keyMediaURL = "MediaUrl0"
)

// Parse URLエンコードされたWebhook本文をInboundMessageに変換
//
// 同じキーが複数ある場合は最初の値を使う。不正なペアは読み飛ばし、
// Fromが取得できない場合のみ domain.ErrMissingSender を返す。
func Parse(rawPayload string) (domain.InboundMessage, error) {
	// ParseQueryは不正なペアがあっても残りを解析するため、エラーは無視する
	values, _ := url.ParseQuery(rawPayload)

	sender := strings.TrimSpace(values.Get(keyFrom))
	if sender == "" {
		return domain.InboundMessage{}, domain.ErrMissingSender
	}

	return domain.InboundMessage{
		Sender:   sender,
		Body:     values.Get(keyBody),
		MediaURL: strings.TrimSpace(values.Get(keyMediaURL)),
	}, nil
}

// DecodeBody API Gatewayのリクエスト本文を復元する
func DecodeBody(body string, isBase64Encoded bool) (string, error) {
	if !isBase64Encoded {
		return body, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("Base64本文のデコードに失敗しました: %w", err)
	}
	return string(decoded), nil
}
