package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	twilioAPIBaseURL      = "https://api.twilio.com"
	whatsappAddressPrefix = "whatsapp:"
)

// TwilioMessenger Twilio Messages APIを使用したMessengerの実装
type TwilioMessenger struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	baseURL    string
}

// twilioErrorResponse Twilio APIのエラーレスポンス構造体
type twilioErrorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// NewTwilioMessenger Twilio送信クライアントを作成
func NewTwilioMessenger(accountSID, authToken, fromNumber string) *TwilioMessenger {
	return &TwilioMessenger{
		accountSID: accountSID,
		authToken:  authToken,
		from:       whatsappAddress(fromNumber),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: twilioAPIBaseURL,
	}
}

// SendMessage WhatsAppメッセージを送信
func (m *TwilioMessenger) SendMessage(ctx context.Context, to, text string) error {
	form := url.Values{}
	form.Set("From", m.from)
	form.Set("To", whatsappAddress(to))
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", m.baseURL, m.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(m.accountSID, m.authToken)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Twilio APIリクエストの送信に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	// 成功時は 201 Created
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResponse twilioErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResponse); err != nil {
			return fmt.Errorf("Twilio API呼び出しが失敗しました (Status: %d, レスポンス解析不可: %v)", resp.StatusCode, err)
		}
		return fmt.Errorf("Twilio API呼び出しが失敗しました (Status: %d, Code: %d): %s", resp.StatusCode, errorResponse.Code, errorResponse.Message)
	}

	return nil
}

// whatsappAddress 電話番号にWhatsAppチャネルのプレフィックスを付与
func whatsappAddress(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, whatsappAddressPrefix) {
		return number
	}
	return whatsappAddressPrefix + number
}
