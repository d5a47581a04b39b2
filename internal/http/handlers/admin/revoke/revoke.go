// Package revoke реализует HTTP-обработчик отзыва купленного элемента
// каталога у профиля. Доступен только роли admin.
package revoke

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
)

// Request — профиль и отзываемый элемент каталога.
type Request struct {
	UID       string `json:"uid" validate:"required,uuid"`
	ContentID string `json:"content_id" validate:"required,uuid"`
}

// Service описывает интерфейс отзыва купленного контента.
type Service interface {
	RevokePurchasedContent(ctx context.Context, uid, contentID string) (int, error)
}

// Handler обрабатывает запросы на отзыв купленного контента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отозвать купленный контент
// @Description Убирает элемент каталога из множества купленного у профиля.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Профиль и элемент каталога"
// @Success 200 {object} map[string]any "Результат отзыва"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /admin/revoke [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.revoke"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	// Отзыв несуществующей покупки не ошибка: отвечаем количеством удаленных строк.
	removed, err := h.service.RevokePurchasedContent(r.Context(), req.UID, req.ContentID)
	if err != nil {
		log.Error("failed to revoke purchased content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not revoke content"))
		return
	}

	log.Info("purchased content revoked",
		slog.String("uid", req.UID),
		slog.String("content_id", req.ContentID),
		slog.Int("removed", removed))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":        req.UID,
		"content_id": req.ContentID,
		"removed":    removed,
	}))
}
