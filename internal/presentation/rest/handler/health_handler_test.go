package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockHealthChecker)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "正常系: ストアに接続できる",
			setupMock: func(m *MockHealthChecker) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok"}`,
		},
		{
			name: "異常系: ストアに接続できない",
			setupMock: func(m *MockHealthChecker) {
				m.On("HealthCheck", mock.Anything).Return(assert.AnError)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockHealthChecker)
			tt.setupMock(store)

			e := echo.New()
			e.GET("/health", NewHealthHandler(store, newTestLogger()).Check)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			store.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_Check_NoStore(t *testing.T) {
	e := echo.New()
	e.GET("/health", NewHealthHandler(nil, newTestLogger()).Check)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
