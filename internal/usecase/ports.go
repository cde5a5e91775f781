package usecase

import (
	"context"

	"github.com/k-negishi/whatsapp-events-bot/internal/domain"
)

// EventFinder 所有者単位でイベントを検索するポート
type EventFinder interface {
	FindByOwner(ctx context.Context, userPhone string) ([]domain.Event, error)
	FindByOwnerAndName(ctx context.Context, userPhone, name string) ([]domain.Event, error)
}

// EventRepository イベントを永続化するポート
type EventRepository interface {
	EventFinder
	Get(ctx context.Context, id string) (*domain.Event, error)
	Put(ctx context.Context, event domain.Event) error
	Delete(ctx context.Context, id string) error
}

// BlobStore ポスター画像を保存するポート。公開URLを返す
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// Messenger WhatsAppメッセージを送信するポート
type Messenger interface {
	SendMessage(ctx context.Context, to, text string) error
}

// MediaFetcher 添付メディアを取得するポート
type MediaFetcher interface {
	Fetch(ctx context.Context, mediaURL string) ([]byte, error)
}
