package domain

import (
	"errors"
	"fmt"
)

// ErrMissingSender Fromが存在しないリクエスト。返信先がないため呼び出し元にのみエラーを返す
var ErrMissingSender = errors.New("送信者(From)が指定されていません")

// ErrEventNotFound 指定されたIDのイベントが存在しない
var ErrEventNotFound = errors.New("イベントが見つかりません")

// FormatError Createメッセージの本文が不正な場合のエラー
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("イベントの形式が不正です: %s", e.Reason)
}

// DuplicateError 同じユーザーが同名のイベントを既に作成している場合のエラー
type DuplicateError struct {
	UserPhone string
	Name      string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("イベント %q は %s により作成済みです", e.Name, e.UserPhone)
}

// CollaboratorError ストア・ブロブストア・メッセージング等の外部サービスで発生したエラー
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s の %s に失敗しました: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError 外部サービスのエラーをラップする
func NewCollaboratorError(collaborator, op string, err error) error {
	return &CollaboratorError{Collaborator: collaborator, Op: op, Err: err}
}
