package ui

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"surveyinsight/internal"
	"surveyinsight/internal/errors"
)

// requestLogger logs one line per request at DEBUG, failures at WARN
func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			logger.Warn("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		logger.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}

// limitBody caps the request body size
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// statusFor maps an application error code to an HTTP status
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeClassificationInvalid, errors.CodeUnsupportedFormat:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body; internal causes are not echoed
func respondError(c *gin.Context, logger *internal.Logger, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal error"
		code = errors.CodeInternalError
	}
	if status == http.StatusRequestEntityTooLarge {
		code = errors.CodeInvalidInput
		message = "request body exceeds the size limit"
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}
