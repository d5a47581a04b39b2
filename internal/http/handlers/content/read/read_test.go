package read

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) GetBySlug(ctx context.Context, slug string) (*models.ContentItem, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContentItem), args.Error(1)
}

func TestReadContentHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		slug           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное чтение",
			slug: "go-course",
			setupMock: func(m *MockService) {
				m.On("GetBySlug", mock.Anything, "go-course").Return(&models.ContentItem{
					ID:    "c1",
					Slug:  "go-course",
					Title: "Go Course",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Go Course"`,
		},
		{
			name: "не найден",
			slug: "missing",
			setupMock: func(m *MockService) {
				m.On("GetBySlug", mock.Anything, "missing").
					Return(nil, repository.ErrContentNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `content not found`,
		},
		{
			name: "ошибка сервиса",
			slug: "go-course",
			setupMock: func(m *MockService) {
				m.On("GetBySlug", mock.Anything, "go-course").
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not read content`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/content/"+tt.slug, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("slug", tt.slug)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
