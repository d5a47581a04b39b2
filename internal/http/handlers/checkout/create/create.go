// Package create реализует HTTP-обработчик инициации оплаты.
//
// Handler принимает намерение пользователя (подписка или разовая покупка),
// подбирает прайс провайдера и создает checkout-сессию, возвращая
// адрес для редиректа на страницу оплаты.
package create

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
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/checkout"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// Request — намерение пользователя оплатить подписку или элемент каталога.
type Request struct {
	Mode      string `json:"mode" validate:"required,oneof=subscription payment"`
	Plan      string `json:"plan" validate:"omitempty,oneof=monthly annual"`
	ContentID string `json:"content_id" validate:"omitempty,uuid"`
}

// Service описывает интерфейс бизнес-логики инициации оплаты.
type Service interface {
	CreateSession(ctx context.Context, req checkout.Request) (*checkout.Session, error)
}

// Catalog доступ к элементу каталога для разовой покупки.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*models.ContentItem, error)
}

// Profiles доступ к профилю для адреса почты плательщика.
type Profiles interface {
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
}

// Prices прайсы тарифов подписки у платёжного провайдера.
type Prices struct {
	MonthlyID string
	AnnualID  string
}

// Handler обрабатывает запросы на создание checkout-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	catalog  Catalog
	profiles Profiles
	prices   Prices
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, catalog Catalog, profiles Profiles, prices Prices) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		catalog:  catalog,
		profiles: profiles,
		prices:   prices,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать checkout-сессию
// @Description Инициирует оплату подписки или разовую покупку элемента каталога.
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Param request body Request true "Намерение оплаты"
// @Success 200 {object} map[string]any "Сессия создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неизвестный контент"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Платёжный провайдер недоступен"
// @Security BearerAuth
// @Router /checkout/sessions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.create"

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
	log.Info("request body decoded", slog.String("mode", req.Mode))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), uid)
	if err != nil {
		log.Error("failed to read profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	productRef, plan, errMsg := h.resolveProductRef(r.Context(), &req)
	if errMsg != "" {
		log.Error("failed to resolve product", slog.String("reason", errMsg))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(errMsg))
		return
	}

	session, err := h.service.CreateSession(r.Context(), checkout.Request{
		ProductRef: productRef,
		ContentID:  req.ContentID,
		Plan:       plan,
		Email:      profile.Email,
		Mode:       req.Mode,
		UserUID:    uid,
	})
	if errors.Is(err, checkout.ErrInvalidRequest) {
		metrics.CheckoutSessionsTotal.WithLabelValues(req.Mode, "invalid").Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid checkout request"))
		return
	}
	if err != nil {
		metrics.CheckoutSessionsTotal.WithLabelValues(req.Mode, "error").Inc()
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("payment provider unavailable"))
		return
	}

	metrics.CheckoutSessionsTotal.WithLabelValues(req.Mode, "ok").Inc()
	log.Info("checkout session created", slog.String("session_id", session.SessionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session_id":   session.SessionID,
		"redirect_url": session.RedirectURL,
	}))
}

// resolveProductRef подбирает прайс провайдера для тарифа или элемента
// каталога. Для подписки вторым значением возвращается нормализованный
// тариф (пустой план считается месячным).
func (h *Handler) resolveProductRef(ctx context.Context, req *Request) (string, string, string) {
	switch req.Mode {
	case checkout.ModeSubscription:
		switch req.Plan {
		case models.PlanAnnual:
			return h.prices.AnnualID, models.PlanAnnual, ""
		case models.PlanMonthly, "":
			return h.prices.MonthlyID, models.PlanMonthly, ""
		}
		return "", "", "unknown subscription plan"
	case checkout.ModePayment:
		if req.ContentID == "" {
			return "", "", "content_id is required for payment mode"
		}
		item, err := h.catalog.GetByID(ctx, req.ContentID)
		if errors.Is(err, repository.ErrContentNotFound) {
			return "", "", "unknown content item"
		}
		if err != nil {
			return "", "", "could not resolve content item"
		}
		if item.StripePriceID == "" {
			return "", "", "content item is not purchasable"
		}
		return item.StripePriceID, "", ""
	}
	return "", "", "unknown mode"
}
