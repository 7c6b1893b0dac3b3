package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/haki-platform/haki-backend/internal/logger"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
	"github.com/haki-platform/haki-backend/internal/repository"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init("fatal")
	os.Exit(m.Run())
}

// respondWith builds an engine whose single route attaches the given error.
func respondWith(err error) *gin.Engine {
	engine := gin.New()
	engine.Use(ErrorHandler())
	engine.GET("/t", func(c *gin.Context) {
		c.Error(err)
	})
	return engine
}

func performGet(engine *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_AppErrorStatus(t *testing.T) {
	w := performGet(respondWith(apperror.New(apperror.ErrCodeForbidden, "not yours")))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "not yours")
}

func TestErrorHandler_EscrowExistsConflict(t *testing.T) {
	w := performGet(respondWith(repository.ErrEscrowExists))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestErrorHandler_WrappedEscrowExistsConflict(t *testing.T) {
	w := performGet(respondWith(fmt.Errorf("escrow repository: create %w", repository.ErrEscrowExists)))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestErrorHandler_NotFoundSentinels(t *testing.T) {
	w := performGet(respondWith(repository.ErrBountyNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "bounty not found")
}

func TestErrorHandler_MasksInternalDetails(t *testing.T) {
	w := performGet(respondWith(errors.New("sql: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "sql:")
}
