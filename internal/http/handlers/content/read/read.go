// Package read реализует HTTP-обработчик страницы элемента каталога.
//
// Handler извлекает slug из URL-параметров, вызывает бизнес-логику
// и возвращает метаданные элемента в JSON-формате.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики чтения элемента каталога.
type Service interface {
	GetBySlug(ctx context.Context, slug string) (*models.ContentItem, error)
}

// Handler обрабатывает запросы на чтение элемента каталога.
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
// @Summary Элемент каталога
// @Description Возвращает метаданные элемента каталога по slug.
// @Tags Content
// @Produce  json
// @Param slug path string true "Slug элемента"
// @Success 200 {object} map[string]any "Метаданные элемента"
// @Failure 404 {object} response.ErrorResponse "Элемент не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /content/{slug} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		log.Error("missing slug in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing slug"))
		return
	}

	item, err := h.service.GetBySlug(r.Context(), slug)
	if errors.Is(err, repository.ErrContentNotFound) {
		log.Info("content not found", slog.String("slug", slug))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("content not found"))
		return
	}
	if err != nil {
		log.Error("failed to read content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read content"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"item": item,
	}))
}
