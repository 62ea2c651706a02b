package helper

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userapp/internal/core/apperror"
	"userapp/internal/core/model/response"
)

// ErrorOptions mirror the DISPLAY_ERROR_DETAILS / LOG_ERRORS /
// LOG_ERROR_DETAILS settings.
type ErrorOptions struct {
	DisplayErrorDetails bool
	LogErrors           bool
	LogErrorDetails     bool
}

type Responder struct {
	opts   ErrorOptions
	logger *zap.Logger
}

func NewResponder(opts ErrorOptions, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Responder{opts: opts, logger: logger}
}

func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindInvalidArgument:
		return http.StatusBadRequest
	case apperror.KindValidationFailed:
		return http.StatusUnprocessableEntity
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict, apperror.KindConstraintViolation:
		return http.StatusConflict
	case apperror.KindConnectionFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// SendError renders err in the error envelope. Internal errors never leak
// their message unless details are displayed.
func (r *Responder) SendError(c *gin.Context, err error) {
	r.send(c, err, "")
}

// SendPanic renders a recovered panic with its stack.
func (r *Responder) SendPanic(c *gin.Context, recovered any, stack []byte) {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("%v", recovered)
	}

	r.send(c, apperror.Wrap(apperror.KindInternal, "", err), string(stack))
}

func (r *Responder) send(c *gin.Context, err error, stack string) {
	kind := apperror.KindOf(err)
	status := StatusFor(kind)

	body := response.ErrorBody{
		Code:    string(kind),
		Message: message(err, kind),
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body.Fields = appErr.Fields
	}

	details := response.ErrorDetails{
		Error: err.Error(),
		Type:  fmt.Sprintf("%T", rootCause(err)),
		Stack: stack,
	}

	if r.opts.DisplayErrorDetails {
		body.Details = details
	}

	if r.opts.LogErrors {
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.String("code", body.Code),
		}
		if r.opts.LogErrorDetails {
			fields = append(fields, zap.String("error", details.Error), zap.String("type", details.Type))
			if stack != "" {
				fields = append(fields, zap.String("stack", stack))
			}
		}

		if status >= http.StatusInternalServerError {
			r.logger.Error(body.Message, fields...)
		} else {
			r.logger.Warn(body.Message, fields...)
		}
	}

	c.AbortWithStatusJSON(status, response.ErrorResponse{Errors: body})
}

func message(err error, kind apperror.Kind) string {
	var appErr *apperror.Error
	if kind != apperror.KindInternal && errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	switch kind {
	case apperror.KindNotFound:
		return "Resource not found."
	case apperror.KindConnectionFailure:
		return "Service temporarily unavailable."
	case apperror.KindInternal:
		return "An internal error has occurred while processing your request."
	default:
		return http.StatusText(StatusFor(kind))
	}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
