package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"server-identity/internal/auth"
	"server-identity/internal/jobs"
	"server-identity/internal/managers/mocks"
	"server-identity/internal/querybuilder"
	"server-identity/internal/repositories"
)

type noopDispatcher struct{}

func (noopDispatcher) DispatchEmail(_ context.Context, _ jobs.EmailPayload) error {
	return nil
}

func newHandlerFixture(t *testing.T, production bool) (*AuthHandler, pgxmock.PgxPoolIface) {
	gin.SetMode(gin.TestMode)

	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(poolMock.Close)

	builder := querybuilder.New(poolMock, time.Second)
	users := repositories.NewUserRepository(builder)
	tokens := repositories.NewTokenRepository(builder)
	store := auth.NewTokenStore(tokens, auth.SystemClock(), time.Hour)
	service := auth.NewService(users, store, &mocks.MockJWTManager{}, noopDispatcher{}, auth.NewPasswordHasher(bcrypt.MinCost))

	return NewAuthHandler(service, time.Hour, production), poolMock
}

func postRegistration(handler *AuthHandler) *httptest.ResponseRecorder {
	body := `{"username":"john","email":"john@example.com","reqPass":"Str0ng!Passw","conPass":"Str0ng!Passw"}`
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)
	return recorder
}

func TestRegisterRejectsUnreachableEmailInProduction(t *testing.T) {
	handler, poolMock := newHandlerFixture(t, true)
	handler.verifyEmail = func(string) bool { return false }

	recorder := postRegistration(handler)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "ERR-013")
	// The flow must stop before any storage access.
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestRegisterSkipsDeliverabilityCheckOutsideProduction(t *testing.T) {
	handler, poolMock := newHandlerFixture(t, false)
	handler.verifyEmail = func(string) bool { return false }

	// Reaching the username pre-check proves the MX gate did not fire.
	poolMock.ExpectQuery(`SELECT id FROM users WHERE username = \$1`).
		WithArgs("john").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	recorder := postRegistration(handler)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "ERR-003")
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
