package usecase

import (
	"context"

	"github.com/k-negishi/whatsapp-events-bot/internal/domain"
)

// AssertNoDuplicate 同じユーザーが同名のイベントを作成していないか確認する
//
// 名前は大文字小文字を区別して完全一致で比較する。
// 確認と書き込みは別々の操作のため、同時に届いた同名のCreateは両方とも通過しうる。
func AssertNoDuplicate(ctx context.Context, finder EventFinder, userPhone, name string) error {
	existing, err := finder.FindByOwnerAndName(ctx, userPhone, name)
	if err != nil {
		return domain.NewCollaboratorError("store", "scan", err)
	}
	if len(existing) > 0 {
		return &domain.DuplicateError{UserPhone: userPhone, Name: name}
	}
	return nil
}
