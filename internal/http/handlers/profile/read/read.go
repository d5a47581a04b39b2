// Package read реализует HTTP-обработчик чтения собственного профиля.
//
// Handler берет идентификатор пользователя из контекста запроса,
// читает профиль и список купленного контента и возвращает их в JSON-формате.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Service описывает интерфейс доступа к профилю.
type Service interface {
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
	ListPurchasedContent(ctx context.Context, uid string) ([]string, error)
}

// Handler обрабатывает запросы на чтение профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущий профиль
// @Description Возвращает профиль пользователя, статус подписки и список купленного контента.
// @Tags Profile
// @Produce  json
// @Success 200 {object} map[string]any "Данные профиля"
// @Failure 401 {object} response.ErrorResponse "Нет идентификатора пользователя"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), uid)
	if err != nil {
		log.Error("failed to read profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read profile"))
		return
	}

	purchased, err := h.service.ListPurchasedContent(r.Context(), uid)
	if err != nil {
		log.Error("failed to read purchased content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read profile"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":                 profile.UID,
		"email":               profile.Email,
		"username":            profile.Username,
		"role":                profile.Role,
		"subscription_status": profile.SubscriptionStatus,
		"subscription_type":   profile.SubscriptionType,
		"free_access":         profile.FreeAccess,
		"current_period_end":  profile.CurrentPeriodEnd,
		"purchased_content":   purchased,
	}))
}
