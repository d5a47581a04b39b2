// Package redeem реализует HTTP-обработчик погашения токена на скачивание.
//
// Handler обменивает одноразовый токен на поток байтов файла. Токен
// погашается атомарно: повторный запрос с тем же токеном получает отказ.
// Любой невалидный токен получает одинаковый ответ 403, чтобы по коду
// ответа нельзя было отличить истекший токен от никогда не существовавшего.
package redeem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
	"github.com/magabrotheeeer/content-marketplace/internal/services/download"
)

// Service описывает интерфейс бизнес-логики погашения токена.
type Service interface {
	Redeem(ctx context.Context, token string) (*download.File, error)
}

// Handler обрабатывает запросы на скачивание по токену.
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
// @Summary Скачать файл по токену
// @Description Обменивает одноразовый токен на байты файла. Токен гасится при первом использовании.
// @Tags Download
// @Produce  octet-stream
// @Param token path string true "Одноразовый токен"
// @Success 200 {file} binary "Файл контента"
// @Failure 403 {object} response.ErrorResponse "Токен невалиден, истек или уже использован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /download/{token} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.download.redeem"

	log := h.log.With(slog.String("op", op))

	token := chi.URLParam(r, "token")

	file, err := h.service.Redeem(r.Context(), token)
	if errors.Is(err, download.ErrInvalidToken) {
		metrics.DownloadsTotal.WithLabelValues("rejected").Inc()
		log.Info("download token rejected")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("invalid or expired download token"))
		return
	}
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		log.Error("failed to redeem download token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not serve download"))
		return
	}
	defer file.Body.Close()

	mimeType := file.Item.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", file.Item.FileName))
	if file.Length > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Length))
	}
	// Ссылка одноразовая, кешировать ответ нельзя.
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")

	if _, err := io.Copy(w, file.Body); err != nil {
		metrics.DownloadsTotal.WithLabelValues("aborted").Inc()
		log.Error("download stream interrupted", sl.Err(err),
			slog.String("content_id", file.Item.ID))
		return
	}

	metrics.DownloadsTotal.WithLabelValues("ok").Inc()
	log.Info("download served", slog.String("content_id", file.Item.ID))
}
