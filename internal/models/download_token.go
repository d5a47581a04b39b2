package models

import "time"

// DownloadTokenTTL время жизни токена на скачивание.
const DownloadTokenTTL = 15 * time.Minute

// DownloadToken привязывает одноразовый токен скачивания к пользователю
// и элементу контента. Живёт только в хранилище токенов (redis) в пределах
// своего TTL и удаляется при первом успешном использовании.
type DownloadToken struct {
	UserUID   string `json:"user_uid"`
	ContentID string `json:"content_id"`
}

// NotificationMessage сообщение для очереди уведомлений о платёжных событиях.
type NotificationMessage struct {
	Kind      string `json:"kind"` // payment_succeeded или payment_failed
	Email     string `json:"email"`
	Username  string `json:"username"`
	InvoiceID string `json:"invoice_id"`
	Amount    int64  `json:"amount"` // в центах
	Currency  string `json:"currency"`
}
