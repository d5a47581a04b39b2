// Package webhook реализует HTTP-обработчик событий платёжного провайдера.
//
// Handler проверяет подпись события, передает его бизнес-логике и отвечает
// провайдеру кодом, управляющим повторной доставкой: 400 для событий
// с неверной подписью, 500 для событий, которые нужно доставить еще раз.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v78"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
)

// maxBodyBytes ограничение на размер тела события провайдера.
const maxBodyBytes = int64(65536)

// Verifier проверяет подпись сырого события.
type Verifier interface {
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// Service описывает интерфейс бизнес-логики применения события.
type Service interface {
	ApplyEvent(ctx context.Context, event stripe.Event) error
}

// Handler обрабатывает входящие события провайдера.
type Handler struct {
	log      *slog.Logger
	verifier Verifier
	service  Service
}

// New создает новый Handler.
func New(log *slog.Logger, verifier Verifier, service Service) *Handler {
	return &Handler{
		log:      log,
		verifier: verifier,
		service:  service,
	}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Принимает подписанные события биллинга и применяет их к профилям.
// @Tags Billing
// @Accept  json
// @Success 200 "Событие принято"
// @Failure 400 "Неверная подпись или тело"
// @Failure 500 "Событие нужно доставить повторно"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(slog.String("op", op))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	event, err := h.verifier.VerifyEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Error("invalid webhook signature", sl.Err(err))
		metrics.BillingEventsTotal.WithLabelValues("unknown", "bad_signature").Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.ApplyEvent(r.Context(), event); err != nil {
		log.Error("failed to process billing event", sl.Err(err),
			slog.String("event_type", string(event.Type)),
			slog.String("event_id", event.ID))
		metrics.BillingEventsTotal.WithLabelValues(string(event.Type), "error").Inc()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("billing event processed",
		slog.String("event_type", string(event.Type)),
		slog.String("event_id", event.ID))
	metrics.BillingEventsTotal.WithLabelValues(string(event.Type), "ok").Inc()
	w.WriteHeader(http.StatusOK)
}
