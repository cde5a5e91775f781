package domain

// InboundMessage Webhookで受信したWhatsAppメッセージ
type InboundMessage struct {
	// Sender 送信者の識別子 ("whatsapp:+393471234567" 形式)
	Sender string
	Body   string
	// MediaURL 添付メディアのURL。添付がない場合は空文字
	MediaURL string
}

// HasMedia メディアが添付されているか
func (m InboundMessage) HasMedia() bool {
	return m.MediaURL != ""
}
