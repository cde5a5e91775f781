package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/k-negishi/whatsapp-events-bot/internal/command"
	"github.com/k-negishi/whatsapp-events-bot/internal/domain"
)

// Outcome 1メッセージの処理結果
type Outcome struct {
	Command command.Kind
	// EventID 作成したイベントのID (Create成功時のみ)
	EventID string
	// Err コマンド処理自体のエラー
	Err error
	// ReplyErr 最終返信の送信エラー。Errとは独立して記録する
	ReplyErr error
}

// Dispatcher 受信メッセージをコマンドに振り分けるユースケース
type Dispatcher struct {
	repo         EventRepository
	blobs        BlobStore
	messenger    Messenger
	media        MediaFetcher
	frontendHost string
	newID        func() string
	log          *slog.Logger
}

// NewDispatcher ディスパッチャーを生成
func NewDispatcher(repo EventRepository, blobs BlobStore, messenger Messenger, media MediaFetcher, frontendHost string, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:         repo,
		blobs:        blobs,
		messenger:    messenger,
		media:        media,
		frontendHost: frontendHost,
		newID:        uuid.NewString,
		log:          log.With("component", "dispatcher"),
	}
}

// Dispatch メッセージを処理し、送信者に返信する
//
// Createの場合は処理開始前に受付メッセージを送る。エラーはすべてここで受け止め、
// 送信者への返信で通知する。コマンド処理中のpanicも失敗として返信する。
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.InboundMessage) (outcome Outcome) {
	cmd := command.Classify(msg.Body)
	log := d.log.With("sender", msg.Sender, "command", cmd.Kind.String())
	outcome = Outcome{Command: cmd.Kind}

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("コマンドの処理中にpanicが発生しました: %v", r)
			log.Error("コマンドの処理中にpanicが発生しました", "panic", r, "stack", string(debug.Stack()))
			d.reply(ctx, log, msg.Sender, command.FailureMessage, &outcome)
		}
	}()

	var reply string
	switch cmd.Kind {
	case command.KindCreate:
		d.acknowledge(ctx, log, msg.Sender)
		reply, outcome.EventID, outcome.Err = d.createEvent(ctx, log, msg, cmd.Argument)
	case command.KindDelete:
		reply, outcome.Err = d.deleteEvent(ctx, log, msg.Sender, cmd.Argument)
	case command.KindList:
		reply, outcome.Err = d.listEvents(ctx, msg.Sender)
	default:
		reply = command.HelpMessage
	}

	if outcome.Err != nil {
		reply = replyForError(outcome.Err)
		logError(log, outcome.Err)
	}

	d.reply(ctx, log, msg.Sender, reply, &outcome)
	return outcome
}

// reply 最終返信を送信し、失敗はOutcome.ReplyErrに記録する
func (d *Dispatcher) reply(ctx context.Context, log *slog.Logger, to, text string, outcome *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome.ReplyErr = domain.NewCollaboratorError("messaging", "send", fmt.Errorf("panic: %v", r))
			log.Error("返信の送信中にpanicが発生しました", "panic", r)
		}
	}()

	if err := d.messenger.SendMessage(ctx, to, text); err != nil {
		outcome.ReplyErr = domain.NewCollaboratorError("messaging", "send", err)
		log.Error("返信の送信に失敗しました", "error", outcome.ReplyErr)
	}
}

// acknowledge 受付メッセージを送信。失敗してもイベント作成は続行する
func (d *Dispatcher) acknowledge(ctx context.Context, log *slog.Logger, to string) {
	if err := d.messenger.SendMessage(ctx, to, command.AckMessage); err != nil {
		log.Warn("受付メッセージの送信に失敗しました", "error", err)
	}
}

func (d *Dispatcher) createEvent(ctx context.Context, log *slog.Logger, msg domain.InboundMessage, rawBody string) (string, string, error) {
	event, err := command.DecodeEvent(rawBody)
	if err != nil {
		return "", "", err
	}
	event.ID = d.newID()
	event.UserPhone = msg.Sender

	// 画像のアップロードより先に重複を確認し、不要なポスターを残さない
	if err := AssertNoDuplicate(ctx, d.repo, msg.Sender, event.Name); err != nil {
		return "", "", err
	}

	if msg.HasMedia() {
		imageURL, err := d.storePoster(ctx, event.ID, msg.MediaURL)
		if err != nil {
			return "", "", err
		}
		event.ImageURL = imageURL
	}

	if err := d.repo.Put(ctx, event); err != nil {
		return "", "", domain.NewCollaboratorError("store", "put", err)
	}

	log.Info("イベントを作成しました", "event_id", event.ID, "has_image", event.HasImage())
	return command.EventCreatedMessage(event, command.EventLink(d.frontendHost, event.ID)), event.ID, nil
}

// storePoster 添付メディアを取得してブロブストアに保存する
func (d *Dispatcher) storePoster(ctx context.Context, eventID, mediaURL string) (string, error) {
	data, err := d.media.Fetch(ctx, mediaURL)
	if err != nil {
		return "", domain.NewCollaboratorError("media", "fetch", err)
	}

	key := "event_" + eventID + mimetype.Detect(data).Extension()
	imageURL, err := d.blobs.Upload(ctx, key, data)
	if err != nil {
		return "", domain.NewCollaboratorError("blob store", "upload", err)
	}
	return imageURL, nil
}

func (d *Dispatcher) deleteEvent(ctx context.Context, log *slog.Logger, userPhone, name string) (string, error) {
	matches, err := d.repo.FindByOwnerAndName(ctx, userPhone, name)
	if err != nil {
		return "", domain.NewCollaboratorError("store", "scan", err)
	}
	if len(matches) == 0 {
		return command.NoEventsMessage, nil
	}

	// 同名のイベントが複数あっても削除するのは最初の1件のみ
	if err := d.repo.Delete(ctx, matches[0].ID); err != nil {
		return "", domain.NewCollaboratorError("store", "delete", err)
	}

	log.Info("イベントを削除しました", "event_id", matches[0].ID, "matches", len(matches))
	return command.DeletedMessage, nil
}

func (d *Dispatcher) listEvents(ctx context.Context, userPhone string) (string, error) {
	events, err := d.repo.FindByOwner(ctx, userPhone)
	if err != nil {
		return "", domain.NewCollaboratorError("store", "scan", err)
	}
	return command.EventListMessage(events, d.frontendHost), nil
}

// replyForError エラーをユーザー向けのメッセージに変換
func replyForError(err error) string {
	var formatErr *domain.FormatError
	var duplicateErr *domain.DuplicateError
	switch {
	case errors.As(err, &formatErr):
		return command.FormatErrorMessage(formatErr)
	case errors.As(err, &duplicateErr):
		return command.DuplicateMessage
	default:
		return command.FailureMessage
	}
}

func logError(log *slog.Logger, err error) {
	var collaboratorErr *domain.CollaboratorError
	if errors.As(err, &collaboratorErr) {
		log.Error("コマンドの処理に失敗しました", "error", err)
		return
	}
	log.Info("ユーザー入力を受け付けませんでした", "reason", err)
}
