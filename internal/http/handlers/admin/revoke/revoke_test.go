package revoke

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
)

// MockService реализует интерфейс revoke.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) RevokePurchasedContent(ctx context.Context, uid, contentID string) (int, error) {
	args := m.Called(ctx, uid, contentID)
	return args.Int(0), args.Error(1)
}

const (
	profileUID = "3d2e7dca-8a71-4cc5-9f0a-52bb67f7ab05"
	contentID  = "7b447e2e-1f05-4132-b649-b316ac44ec4c"
)

func TestRevokeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный отзыв",
			body: `{"uid":"` + profileUID + `","content_id":"` + contentID + `"}`,
			setupMock: func(m *MockService) {
				m.On("RevokePurchasedContent", mock.Anything, profileUID, contentID).
					Return(1, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"removed":1`,
		},
		{
			name: "покупки не было",
			body: `{"uid":"` + profileUID + `","content_id":"` + contentID + `"}`,
			setupMock: func(m *MockService) {
				m.On("RevokePurchasedContent", mock.Anything, profileUID, contentID).
					Return(0, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"removed":0`,
		},
		{
			name:           "невалидный uid",
			body:           `{"uid":"abc","content_id":"` + contentID + `"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field UID can contain only uuid`,
		},
		{
			name: "ошибка хранилища",
			body: `{"uid":"` + profileUID + `","content_id":"` + contentID + `"}`,
			setupMock: func(m *MockService) {
				m.On("RevokePurchasedContent", mock.Anything, profileUID, contentID).
					Return(0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not revoke content`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/revoke", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
