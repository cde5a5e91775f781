package command

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/k-negishi/whatsapp-events-bot/internal/domain"
)

// ユーザーへ返信する固定メッセージ
const (
	AckMessage       = "We received your message. Creating your event..."
	NoEventsMessage  = "You have no events created yet. Please create an event first."
	DuplicateMessage = "You already created an event with this name. Please choose a different name."
	DeletedMessage   = "Event deleted successfully."
	FailureMessage   = "Sorry, something went wrong while processing your request. Please try again later."
)

const createUsage = "➕*Create*\nIf you want to create an event, please start your message with 'Create' and then add the following information in separate rows:\n-Event name\n-Date\n-Address\n-Description (it can have multiple rows)"

// HelpMessage 不明なコマンドに対する案内メッセージ
const HelpMessage = "Sorry, I didn't understand that.\n\n" +
	createUsage + "\n\n" +
	"➖*Delete*\nIf you want to delete an event, please send 'Delete: <event_name>'.\n\n" +
	"📋*List*\nIf you want to list your events, please send 'List'."

// FormatErrorMessage Createメッセージの形式エラーを案内するメッセージ
func FormatErrorMessage(err *domain.FormatError) string {
	return fmt.Sprintf("Sorry, I couldn't create your event (%s).\n\n%s", err.Reason, createUsage)
}

// EventLink イベント詳細ページのURLを生成
//
// frontendHost は "example.cloudfront.net" のようなホスト名。スキームが付いていても受け付ける。
func EventLink(frontendHost, eventID string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(frontendHost, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")
	return fmt.Sprintf("https://%s/event/%s", host, eventID)
}

// MaxReplyLength TwilioがWhatsAppメッセージ本文に許容する最大長 (UTF-16単位)
const MaxReplyLength = 1600

const ellipsis = "…"

// EventCreatedMessage イベント作成完了メッセージ
//
// 上限を超える場合は説明文の末尾を省略する。全文は詳細ページのリンクから参照できる。
func EventCreatedMessage(event domain.Event, link string) string {
	message := createdMessage(event, event.Description, link)
	over := utf16Len(message) - MaxReplyLength
	if over <= 0 {
		return message
	}

	description := []rune(event.Description)
	cut := len(description)
	for removed := 0; cut > 0 && removed < over+utf16Len(ellipsis); cut-- {
		removed += utf16.RuneLen(description[cut-1])
	}
	return createdMessage(event, string(description[:cut])+ellipsis, link)
}

func createdMessage(event domain.Event, description, link string) string {
	return fmt.Sprintf("*%s*\n🕒 %s\n📍 %s\n\n%s\n\n\nFor more information, visit: %s",
		event.Name, event.Date, event.Address, description, link)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// EventListMessage イベント一覧メッセージ。並び順はストアの返却順のまま
func EventListMessage(events []domain.Event, frontendHost string) string {
	if len(events) == 0 {
		return NoEventsMessage
	}

	var messageBuilder strings.Builder
	messageBuilder.WriteString("Here are your events:\n\n")
	for _, event := range events {
		messageBuilder.WriteString(fmt.Sprintf("*%s*\nlink: %s\n\n", event.Name, EventLink(frontendHost, event.ID)))
	}

	return strings.TrimSpace(messageBuilder.String())
}
