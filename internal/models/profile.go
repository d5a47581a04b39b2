// Package models содержит доменные структуры маркетплейса:
// профиль пользователя с платёжным состоянием, элементы каталога
// и токены на скачивание файлов.
package models

import "time"

// Статусы подписки, приходящие от платёжного провайдера.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionPastDue   = "past_due"
	SubscriptionNone      = "none"
)

// Типы подписки по тарифному плану.
const (
	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
	PlanNone    = "none"
)

// Profile представляет запись пользователя с состоянием доступа и биллинга.
// BillingCustomerRef выставляется один раз при первой успешной оплате
// и больше не перезаписывается; BillingSubscriptionRef заменяется при
// каждом создании новой подписки.
type Profile struct {
	UID                    string     // Уникальный идентификатор пользователя
	Email                  string     // Электронная почта
	Username               string     // Имя пользователя (уникальное)
	PasswordHash           string     // Хэш пароля
	Role                   string     // Роль пользователя, admin или user
	SubscriptionStatus     string     // active, cancelled, past_due, none
	SubscriptionType       string     // monthly, annual, none
	BillingCustomerRef     string     // Идентификатор клиента у платёжного провайдера
	BillingSubscriptionRef string     // Идентификатор активной подписки у провайдера
	FreeAccess             bool       // Административный флаг бесплатного доступа
	CurrentPeriodEnd       *time.Time // Конец оплаченного периода подписки
	CreatedAt              time.Time
	LastLogin              *time.Time
}
