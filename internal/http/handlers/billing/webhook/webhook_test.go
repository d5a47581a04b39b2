package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v78"
)

// MockVerifier реализует интерфейс webhook.Verifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	args := m.Called(payload, sigHeader)
	return args.Get(0).(stripe.Event), args.Error(1)
}

// MockService реализует интерфейс webhook.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ApplyEvent(ctx context.Context, event stripe.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		signature      string
		setupMocks     func(*MockVerifier, *MockService)
		expectedStatus int
	}{
		{
			name:      "событие принято",
			signature: "t=1,v1=good",
			setupMocks: func(v *MockVerifier, s *MockService) {
				event := stripe.Event{ID: "evt_1", Type: "checkout.session.completed"}
				v.On("VerifyEvent", mock.Anything, "t=1,v1=good").Return(event, nil)
				s.On("ApplyEvent", mock.Anything, event).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "неверная подпись",
			signature: "t=1,v1=bad",
			setupMocks: func(v *MockVerifier, _ *MockService) {
				v.On("VerifyEvent", mock.Anything, "t=1,v1=bad").
					Return(stripe.Event{}, errors.New("signature mismatch"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "ошибка обработки требует повторной доставки",
			signature: "t=1,v1=good",
			setupMocks: func(v *MockVerifier, s *MockService) {
				event := stripe.Event{ID: "evt_2", Type: "customer.subscription.updated"}
				v.On("VerifyEvent", mock.Anything, mock.Anything).Return(event, nil)
				s.On("ApplyEvent", mock.Anything, event).Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockVerifier := new(MockVerifier)
			mockService := new(MockService)
			tt.setupMocks(mockVerifier, mockService)

			handler := New(logger, mockVerifier, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", strings.NewReader(`{"id":"evt"}`))
			req.Header.Set("Stripe-Signature", tt.signature)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockVerifier.AssertExpectations(t)
			mockService.AssertExpectations(t)
		})
	}
}
