package domain

// Event WhatsAppから作成されたイベントのドメインエンティティ
//
// IDは作成時に採番され以後変更されない。UserPhoneが所有者を表し、
// 削除できるのは作成したユーザーのみ。
type Event struct {
	ID          string
	Name        string `validate:"required"`
	Date        string `validate:"required"`
	Address     string `validate:"required"`
	Description string
	UserPhone   string
	ImageURL    string
}

// HasImage ポスター画像が登録されているか
func (e Event) HasImage() bool {
	return e.ImageURL != ""
}
