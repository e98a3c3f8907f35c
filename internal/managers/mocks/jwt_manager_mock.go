package mocks

import (
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"server-identity/internal/managers"
)

// MockJWTManager implements managers.JWTMgr for tests.
type MockJWTManager struct {
	mock.Mock
}

func (m *MockJWTManager) GenerateAccessToken(userID, username, email string) (string, error) {
	args := m.Called(userID, username, email)
	return args.String(0), args.Error(1)
}

func (m *MockJWTManager) GenerateRefreshToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockJWTManager) VerifyAccessToken(tokenString string) (*managers.AccessClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*managers.AccessClaims)
	return claims, args.Error(1)
}

func (m *MockJWTManager) VerifyRefreshToken(tokenString string) (*managers.RefreshClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*managers.RefreshClaims)
	return claims, args.Error(1)
}

func (m *MockJWTManager) JWTMiddleware() gin.HandlerFunc {
	args := m.Called()
	return args.Get(0).(gin.HandlerFunc)
}
