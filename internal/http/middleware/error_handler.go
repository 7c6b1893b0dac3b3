package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/haki-platform/haki-backend/internal/logger"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
	"github.com/haki-platform/haki-backend/internal/repository"
)

// ErrorHandler turns errors attached to the gin context into JSON responses.
// App errors carry their own status; everything unrecognized is masked as an
// internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()

		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("Request error")

		statusCode := http.StatusInternalServerError
		message := "internal server error"

		var appErr *apperror.AppError
		switch {
		case errors.As(err.Err, &appErr):
			statusCode = appErr.HTTPStatus
			message = appErr.Message
		case errors.Is(err.Err, repository.ErrUserNotFound):
			statusCode = http.StatusNotFound
			message = "user not found"
		case errors.Is(err.Err, repository.ErrBountyNotFound):
			statusCode = http.StatusNotFound
			message = "bounty not found"
		case errors.Is(err.Err, repository.ErrEscrowNotFound):
			statusCode = http.StatusNotFound
			message = "escrow not found"
		case errors.Is(err.Err, repository.ErrDocumentNotFound):
			statusCode = http.StatusNotFound
			message = "document not found"
		case errors.Is(err.Err, repository.ErrEscrowExists):
			statusCode = http.StatusConflict
			message = "escrow already exists for this bounty"
		case err.Error() != "" && !containsInternalKeywords(err.Error()):
			message = err.Error()
			statusCode = http.StatusBadRequest
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}

// containsInternalKeywords reports whether an error message leaks internals.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	lower := strings.ToLower(s)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
