// Package freeaccess реализует HTTP-обработчик включения и выключения
// бесплатного доступа для профиля. Доступен только роли admin.
package freeaccess

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// Request — профиль и желаемое значение флага.
type Request struct {
	UID     string `json:"uid" validate:"required,uuid"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

// Service описывает интерфейс управления флагом бесплатного доступа.
type Service interface {
	SetFreeAccess(ctx context.Context, uid string, enabled bool) error
}

// Handler обрабатывает запросы на изменение флага.
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
// @Summary Выдать или снять бесплатный доступ
// @Description Включает или выключает флаг free_access у профиля.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Профиль и значение флага"
// @Success 200 {object} map[string]any "Флаг обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Профиль не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /admin/free-access [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.freeaccess"

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

	err := h.service.SetFreeAccess(r.Context(), req.UID, *req.Enabled)
	if errors.Is(err, repository.ErrProfileNotFound) {
		log.Info("profile not found", slog.String("uid", req.UID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("profile not found"))
		return
	}
	if err != nil {
		log.Error("failed to set free access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update profile"))
		return
	}

	log.Info("free access updated",
		slog.String("uid", req.UID), slog.Bool("enabled", *req.Enabled))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":         req.UID,
		"free_access": *req.Enabled,
	}))
}
