package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/interfaces/rest"
	apperrors "github.com/4lexanderpardo09/help-desk-back-sub000/pkg/errors"
)

// MockAuthService is a mock implementation of the AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockAuthService)
	handler := rest.NewAuthHandler(mockService)

	t.Run("Success", func(t *testing.T) {
		c, w := testContext(t, "POST", "/api/auth/login", gin.H{
			"email":    "dana@example.com",
			"password": "hunter2hunter2",
		})

		user := &models.User{ID: "u1", Name: "Dana", Email: "dana@example.com", Active: true}
		mockService.On("Login", mock.Anything, "dana@example.com", "hunter2hunter2").
			Return("signed.jwt.token", user, nil).Once()

		handler.Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "signed.jwt.token", data["token"])
		mockService.AssertExpectations(t)
	})

	t.Run("BadCredentials", func(t *testing.T) {
		c, w := testContext(t, "POST", "/api/auth/login", gin.H{
			"email":    "dana@example.com",
			"password": "wrong",
		})

		mockService.On("Login", mock.Anything, "dana@example.com", "wrong").
			Return("", nil, apperrors.NewUnauthorizedError("invalid credentials")).Once()

		handler.Login(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		c, w := testContext(t, "POST", "/api/auth/login", gin.H{"email": "dana@example.com"})

		handler.Login(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Login", mock.Anything, "dana@example.com", "")
	})
}
