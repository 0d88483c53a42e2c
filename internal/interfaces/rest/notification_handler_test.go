package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/interfaces/rest"
)

// MockNotificationReader is a mock implementation of the NotificationReader
type MockNotificationReader struct {
	mock.Mock
}

func (m *MockNotificationReader) GetMyNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationReader) MarkAsRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func TestNotificationHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockNotificationReader)
	handler := rest.NewNotificationHandler(mockService)

	t.Run("ReturnsOwnNotifications", func(t *testing.T) {
		c, w := testContext(t, "GET", "/api/notifications", nil)

		rows := []*models.Notification{
			{ID: "n1", RecipientID: "user123", Title: "Ticket assigned", CreatedAt: time.Now()},
			{ID: "n2", RecipientID: "user123", Title: "SLA breached", CreatedAt: time.Now()},
		}
		mockService.On("GetMyNotifications", mock.Anything, "user123").
			Return(rows, nil).Once()

		handler.List(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].([]interface{})
		assert.Len(t, data, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("NoSession", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/api/notifications", nil)

		handler.List(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "GetMyNotifications")
	})
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockNotificationReader)
	handler := rest.NewNotificationHandler(mockService)

	t.Run("Success", func(t *testing.T) {
		c, w := testContext(t, "PUT", "/api/notifications/n1/read", nil)
		c.Params = gin.Params{{Key: "id", Value: "n1"}}

		mockService.On("MarkAsRead", mock.Anything, "n1", "user123").
			Return(nil).Once()

		handler.MarkRead(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownIDMapsTo404", func(t *testing.T) {
		c, w := testContext(t, "PUT", "/api/notifications/missing/read", nil)
		c.Params = gin.Params{{Key: "id", Value: "missing"}}

		mockService.On("MarkAsRead", mock.Anything, "missing", "user123").
			Return(assert.AnError).Once()

		handler.MarkRead(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})
}
