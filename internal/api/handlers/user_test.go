package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/services/mocks"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserHandler_Register(t *testing.T) {
	t.Run("Success - User Registration", func(t *testing.T) {
		// Arrange
		mockUserService := mocks.NewMockUserService(t)
		userHandler := handlers.NewUserHandler(mockUserService)

		registerReq := &models.RegisterRequest{Name: "Test User", Email: "test@example.com", Password: "P@ssword123!"}
		createdUser := &models.User{ID: uuid.New(), Email: registerReq.Email, Name: registerReq.Name}

		mockUserService.On("Register", mock.Anything, mock.MatchedBy(func(r *models.RegisterRequest) bool {
			return r.Email == registerReq.Email && r.Name == registerReq.Name
		})).Return(createdUser, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", jsonBody(t, registerReq), nil)
		w := httptest.NewRecorder()

		// Act
		userHandler.Register()(w, req)

		// Assert
		assert.Equal(t, http.StatusCreated, w.Code)

		resp := decodeAPIResponse(t, w)
		assert.True(t, resp.Success)

		var user models.User
		decodeData(t, resp, &user)
		assert.Equal(t, createdUser.ID, user.ID)
		assert.Equal(t, createdUser.Email, user.Email)
	})

	t.Run("Failure - Invalid Input", func(t *testing.T) {
		// Arrange
		mockUserService := mocks.NewMockUserService(t)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", strings.NewReader(`{"email":"test@example.com"}`), nil)
		w := httptest.NewRecorder()

		// Act
		userHandler.Register()(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeAPIResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, errors.ErrCodeValidation, resp.Error.Code)
		mockUserService.AssertNotCalled(t, "Register")
	})

	t.Run("Failure - Email Already Registered", func(t *testing.T) {
		// Arrange
		mockUserService := mocks.NewMockUserService(t)
		userHandler := handlers.NewUserHandler(mockUserService)

		registerReq := &models.RegisterRequest{Name: "Test User", Email: "taken@example.com", Password: "P@ssword123!"}
		mockUserService.On("Register", mock.Anything, mock.Anything).
			Return(nil, errors.DuplicateEntryError("Email already registered")).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", jsonBody(t, registerReq), nil)
		w := httptest.NewRecorder()

		// Act
		userHandler.Register()(w, req)

		// Assert
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, errors.ErrCodeDuplicateEntry, decodeAPIResponse(t, w).Error.Code)
	})
}

func TestUserHandler_Login(t *testing.T) {
	loginReq := &models.LoginRequest{Email: "test@example.com", Password: "P@ssword123!"}

	t.Run("Success - Valid Credentials", func(t *testing.T) {
		// Arrange
		mockUserService := mocks.NewMockUserService(t)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Login", mock.Anything, mock.AnythingOfType("*models.LoginRequest")).
			Return(&models.LoginResponse{Success: true, Token: "jwt-token", ExpiresIn: 86400}, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", jsonBody(t, loginReq), nil)
		w := httptest.NewRecorder()

		// Act
		userHandler.Login()(w, req)

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)

		var login models.LoginResponse
		decodeData(t, decodeAPIResponse(t, w), &login)
		assert.Equal(t, "jwt-token", login.Token)
		assert.Equal(t, 86400, login.ExpiresIn)
	})

	t.Run("Failure - Invalid Credentials", func(t *testing.T) {
		// Arrange
		mockUserService := mocks.NewMockUserService(t)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Login", mock.Anything, mock.Anything).
			Return(&models.LoginResponse{Success: false, RemainingTries: 4, Message: "Invalid email or password"}, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", jsonBody(t, loginReq), nil)
		w := httptest.NewRecorder()

		// Act
		userHandler.Login()(w, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		resp := decodeAPIResponse(t, w)
		assert.Equal(t, errors.ErrCodeUnauthorized, resp.Error.Code)
		assert.Equal(t, "Invalid email or password", resp.Error.Message)
		assert.Empty(t, w.Header().Get("Retry-After"))
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		mockUserService := mocks.NewMockUserService(t)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Login", mock.Anything, mock.Anything).
			Return(&models.LoginResponse{Success: false, RetryAfter: 120, Message: "Too many login attempts. Please try again later."}, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", jsonBody(t, loginReq), nil)
		w := httptest.NewRecorder()

		// Act
		userHandler.Login()(w, req)

		// Assert
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "120", w.Header().Get("Retry-After"))
		assert.Equal(t, errors.ErrCodeTooManyRequests, decodeAPIResponse(t, w).Error.Code)
	})

	t.Run("Failure - Malformed JSON", func(t *testing.T) {
		// Arrange
		mockUserService := mocks.NewMockUserService(t)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", strings.NewReader(`{"email":`), nil)
		w := httptest.NewRecorder()

		// Act
		userHandler.Login()(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errors.ErrCodeBadRequest, decodeAPIResponse(t, w).Error.Code)
	})
}

func TestUserHandler_Profile(t *testing.T) {
	t.Run("Success - Current User", func(t *testing.T) {
		// Arrange
		mockUserService := mocks.NewMockUserService(t)
		userHandler := handlers.NewUserHandler(mockUserService)

		userID := uuid.New()
		mockUserService.On("GetUserByID", mock.Anything, userID).
			Return(&models.User{ID: userID, Name: "Test User", Email: "test@example.com"}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/users/profile", nil, userID, nil)
		w := httptest.NewRecorder()

		// Act
		userHandler.Profile()(w, req)

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)

		var user models.User
		decodeData(t, decodeAPIResponse(t, w), &user)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		// Arrange
		mockUserService := mocks.NewMockUserService(t)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/users/profile", nil, nil)
		w := httptest.NewRecorder()

		// Act
		userHandler.Profile()(w, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUserService.AssertNotCalled(t, "GetUserByID")
	})
}
