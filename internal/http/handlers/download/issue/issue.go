// Package issue реализует HTTP-обработчик выдачи токена на скачивание.
//
// Handler проверяет право пользователя на элемент каталога и при успехе
// возвращает одноразовый токен с ограниченным сроком жизни.
package issue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
	"github.com/magabrotheeeer/content-marketplace/internal/services/download"
)

// Request — элемент каталога, на который запрашивается токен.
type Request struct {
	ContentID string `json:"content_id" validate:"required,uuid"`
}

// Service описывает интерфейс бизнес-логики выдачи токена.
type Service interface {
	Issue(ctx context.Context, userUID, contentID string) (*download.Issued, error)
}

// Handler обрабатывает запросы на выдачу токена.
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
// @Summary Выдать токен на скачивание
// @Description Проверяет право доступа и возвращает одноразовый токен.
// @Tags Download
// @Accept  json
// @Produce  json
// @Param request body Request true "Элемент каталога"
// @Success 200 {object} map[string]any "Токен выдан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нет права на скачивание"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /downloads [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.download.issue"

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

	issued, err := h.service.Issue(r.Context(), uid, req.ContentID)
	switch {
	case errors.Is(err, download.ErrAccessDenied):
		metrics.DownloadTokensIssuedTotal.WithLabelValues("denied").Inc()
		log.Info("download denied", slog.String("content_id", req.ContentID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	case err != nil:
		metrics.DownloadTokensIssuedTotal.WithLabelValues("error").Inc()
		log.Error("failed to issue download token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not issue download token"))
		return
	}

	metrics.DownloadTokensIssuedTotal.WithLabelValues("ok").Inc()
	log.Info("download token issued", slog.String("content_id", req.ContentID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":      issued.Token,
		"expires_in": issued.ExpiresIn,
	}))
}
