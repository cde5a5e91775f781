package command

import "strings"

// Kind メッセージから判定したコマンドの種類
type Kind int

const (
	KindUnknown Kind = iota
	KindCreate
	KindDelete
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindDelete:
		return "delete"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

const deletePrefix = "Delete: "

// Command メッセージ本文から判定したコマンド
//
// Argumentの意味はKindによって異なる。
//   - KindCreate: メッセージ本文全体
//   - KindDelete: 削除対象のイベント名
//   - KindList: 空文字
//   - KindUnknown: 元のメッセージ本文
type Command struct {
	Kind     Kind
	Argument string
}

// Classify メッセージ本文をコマンドに分類する
func Classify(body string) Command {
	switch {
	case strings.HasPrefix(body, "Create\n"), strings.HasPrefix(body, "create\n"):
		return Command{Kind: KindCreate, Argument: body}
	case strings.HasPrefix(body, deletePrefix):
		return Command{Kind: KindDelete, Argument: strings.TrimPrefix(body, deletePrefix)}
	case body == "List", body == "list":
		return Command{Kind: KindList}
	default:
		return Command{Kind: KindUnknown, Argument: body}
	}
}
