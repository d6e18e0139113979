package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/mood-journal/pkg/errors"
)

const (
	codeUnauthorized      = "unauthorized"
	codeRateLimitExceeded = "rate_limit_exceeded"
	codeInternal          = "internal_error"
)

// HTTPError is the transport form of a failure: a status plus the code and message
// rendered in the {"error":{"code","message"}} envelope.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func (e *HTTPError) envelope() gin.H {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.Status)
	}
	return gin.H{"error": gin.H{"code": e.Code, "message": message}}
}

// statusForCode maps pkg/errors codes onto HTTP statuses; unknown codes are 500.
func statusForCode(code string) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeInvalidCredentials, codeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeInvalidToken:
		return http.StatusForbidden
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeUsernameExists:
		return http.StatusConflict
	case codeRateLimitExceeded:
		return http.StatusTooManyRequests
	case apperrors.CodeAnalysisUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fromDomain converts a service error. Errors without an AppError code report
// fallbackCode; the message never includes the wrapped cause.
func fromDomain(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err)
	if code == "" {
		code = fallbackCode
	}
	return NewHTTPError(statusForCode(code), code, apperrors.MessageOf(err), err)
}

func badRequest(err error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "invalid request body", err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if apperrors.CodeOf(err) != "" {
		return fromDomain(err, codeInternal)
	}
	return NewHTTPError(http.StatusInternalServerError, codeInternal, "something went wrong", err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
