package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioDomain = "twilio.com"

// TwilioMediaFetcher Twilioに保存された添付メディアを取得するMediaFetcherの実装
type TwilioMediaFetcher struct {
	accountSID  string
	authToken   string
	httpClient  *http.Client
	maxBytes    int64
	trustedHost func(host string) bool
}

// NewTwilioMediaFetcher メディア取得クライアントを作成
func NewTwilioMediaFetcher(accountSID, authToken string, maxBytes int64) *TwilioMediaFetcher {
	return &TwilioMediaFetcher{
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		maxBytes:    maxBytes,
		trustedHost: isTwilioHost,
	}
}

// Fetch メディアURLからバイナリを取得
//
// TwilioのメディアURLは認証付きで、実体の保存先へリダイレクトされる。
// MediaUrl0は送信元を検証できないため、Twilio以外のURLには認証情報を送らずエラーとする。
func (f *TwilioMediaFetcher) Fetch(ctx context.Context, mediaURL string) ([]byte, error) {
	if err := f.checkMediaURL(mediaURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.SetBasicAuth(f.accountSID, f.authToken)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("メディアの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("メディアの取得に失敗しました (Status: %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("メディアの読み込みに失敗しました: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("メディアのサイズが上限 (%d bytes) を超えています", f.maxBytes)
	}

	return data, nil
}

// checkMediaURL httpsかつ信頼できるホストのURLのみ許可する
func (f *TwilioMediaFetcher) checkMediaURL(mediaURL string) error {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return fmt.Errorf("メディアURLの解析に失敗しました: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("メディアURLはhttpsである必要があります (scheme: %q)", u.Scheme)
	}
	if !f.trustedHost(u.Hostname()) {
		return fmt.Errorf("Twilio以外のメディアURLは取得できません (host: %q)", u.Hostname())
	}
	return nil
}

// isTwilioHost twilio.com またはそのサブドメインか
func isTwilioHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == twilioDomain || strings.HasSuffix(host, "."+twilioDomain)
}
