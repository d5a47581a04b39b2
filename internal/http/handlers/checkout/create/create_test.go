package create

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/checkout"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateSession(ctx context.Context, req checkout.Request) (*checkout.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContentItem), args.Error(1)
}

type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

const contentID = "7b447e2e-1f05-4132-b649-b316ac44ec4c"

func TestCreateCheckoutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prices := Prices{MonthlyID: "price_monthly", AnnualID: "price_annual"}

	tests := []struct {
		name           string
		uid            string
		body           string
		setupMocks     func(*MockService, *MockCatalog, *MockProfiles)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "подписка на месяц",
			uid:  "uid-1",
			body: `{"mode":"subscription","plan":"monthly"}`,
			setupMocks: func(s *MockService, _ *MockCatalog, p *MockProfiles) {
				p.On("GetProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UID: "uid-1", Email: "u@example.com"}, nil)
				s.On("CreateSession", mock.Anything, checkout.Request{
					ProductRef: "price_monthly",
					Plan:       models.PlanMonthly,
					Email:      "u@example.com",
					Mode:       checkout.ModeSubscription,
					UserUID:    "uid-1",
				}).Return(&checkout.Session{SessionID: "cs_1", RedirectURL: "https://pay.example/cs_1"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"redirect_url":"https://pay.example/cs_1"`,
		},
		{
			name: "годовой тариф",
			uid:  "uid-1",
			body: `{"mode":"subscription","plan":"annual"}`,
			setupMocks: func(s *MockService, _ *MockCatalog, p *MockProfiles) {
				p.On("GetProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UID: "uid-1", Email: "u@example.com"}, nil)
				s.On("CreateSession", mock.Anything, mock.MatchedBy(func(r checkout.Request) bool {
					return r.ProductRef == "price_annual" && r.Plan == models.PlanAnnual
				})).Return(&checkout.Session{SessionID: "cs_2", RedirectURL: "https://pay.example/cs_2"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `cs_2`,
		},
		{
			name: "разовая покупка",
			uid:  "uid-1",
			body: `{"mode":"payment","content_id":"` + contentID + `"}`,
			setupMocks: func(s *MockService, c *MockCatalog, p *MockProfiles) {
				p.On("GetProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UID: "uid-1", Email: "u@example.com"}, nil)
				c.On("GetByID", mock.Anything, contentID).
					Return(&models.ContentItem{ID: contentID, StripePriceID: "price_item"}, nil)
				s.On("CreateSession", mock.Anything, mock.MatchedBy(func(r checkout.Request) bool {
					return r.ProductRef == "price_item" && r.ContentID == contentID
				})).Return(&checkout.Session{SessionID: "cs_3", RedirectURL: "https://pay.example/cs_3"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `cs_3`,
		},
		{
			name: "покупка неизвестного контента",
			uid:  "uid-1",
			body: `{"mode":"payment","content_id":"` + contentID + `"}`,
			setupMocks: func(_ *MockService, c *MockCatalog, p *MockProfiles) {
				p.On("GetProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UID: "uid-1", Email: "u@example.com"}, nil)
				c.On("GetByID", mock.Anything, contentID).
					Return(nil, repository.ErrContentNotFound)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `unknown content item`,
		},
		{
			name: "payment без content_id",
			uid:  "uid-1",
			body: `{"mode":"payment"}`,
			setupMocks: func(_ *MockService, _ *MockCatalog, p *MockProfiles) {
				p.On("GetProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UID: "uid-1", Email: "u@example.com"}, nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `content_id is required`,
		},
		{
			name:           "неизвестный mode",
			uid:            "uid-1",
			body:           `{"mode":"donation"}`,
			setupMocks:     func(_ *MockService, _ *MockCatalog, _ *MockProfiles) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Mode has an unsupported value`,
		},
		{
			name: "провайдер недоступен",
			uid:  "uid-1",
			body: `{"mode":"subscription"}`,
			setupMocks: func(s *MockService, _ *MockCatalog, p *MockProfiles) {
				p.On("GetProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UID: "uid-1", Email: "u@example.com"}, nil)
				s.On("CreateSession", mock.Anything, mock.Anything).
					Return(nil, checkout.ErrUpstream)
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `payment provider unavailable`,
		},
		{
			name:           "нет идентификатора пользователя",
			uid:            "",
			body:           `{"mode":"subscription"}`,
			setupMocks:     func(_ *MockService, _ *MockCatalog, _ *MockProfiles) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `user identification missing`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockCatalog := new(MockCatalog)
			mockProfiles := new(MockProfiles)
			tt.setupMocks(mockService, mockCatalog, mockProfiles)

			handler := New(logger, mockService, mockCatalog, mockProfiles, prices)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sessions", strings.NewReader(tt.body))
			if tt.uid != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.uid)
				req = req.WithContext(ctx)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
			mockCatalog.AssertExpectations(t)
		})
	}
}
