// Package access реализует проверку права доступа пользователя к элементу
// контента. Чистая функция без I/O: решение всегда вычисляется заново
// по актуальному профилю, потому что статус подписки может измениться
// асинхронно через webhook в любой момент.
package access

import (
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Evaluate возвращает true, если пользователю разрешен доступ к contentID:
// выставлен административный флаг бесплатного доступа, либо подписка
// активна, либо элемент куплен разово. Порядок проверок значения не имеет.
func Evaluate(profile *models.Profile, purchased []string, contentID string) bool {
	if profile == nil {
		return false
	}
	if profile.FreeAccess {
		return true
	}
	if profile.SubscriptionStatus == models.SubscriptionActive {
		return true
	}
	for _, id := range purchased {
		if id == contentID {
			return true
		}
	}
	return false
}
