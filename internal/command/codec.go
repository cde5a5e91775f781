package command

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/k-negishi/whatsapp-events-bot/internal/domain"
)

var validate = validator.New()

// 1行目のキーワード + イベント名・日付・住所
const minEventLines = 4

// fieldLabels 必須項目のユーザー向け表示名
var fieldLabels = map[string]string{
	"Name":    "event name",
	"Date":    "date",
	"Address": "address",
}

// DecodeEvent Createメッセージ本文をイベントに変換
//
// 1行目(キーワード)は読み捨て、2〜4行目をイベント名・日付・住所として前後の空白を除去する。
// 5行目以降は改行で連結して説明文とする。日付や住所の形式チェックは行わない。
func DecodeEvent(rawBody string) (domain.Event, error) {
	lines := strings.Split(rawBody, "\n")
	if len(lines) < minEventLines {
		return domain.Event{}, &domain.FormatError{Reason: "insufficient fields"}
	}

	event := domain.Event{
		Name:        strings.TrimSpace(lines[1]),
		Date:        strings.TrimSpace(lines[2]),
		Address:     strings.TrimSpace(lines[3]),
		Description: strings.Join(lines[minEventLines:], "\n"),
	}

	if err := validate.Struct(event); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return domain.Event{}, &domain.FormatError{Reason: "missing " + fieldLabels[validationErrs[0].Field()]}
		}
		return domain.Event{}, err
	}

	return event, nil
}
