package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Error carries an explicit status and code through handler helpers.
type Error struct {
	Status int
	Code   string
	Param  string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code, param string, err error) *Error {
	return &Error{Status: status, Code: code, Param: param, Err: err}
}

// Classify maps pipeline and serving errors to a status and code. Bad input
// is 422, a model that is not ready is 503, anything else is 500.
func Classify(err error) (int, string) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status, apiErr.Code
	case errors.Is(err, pkgerrors.ErrNotFitted), errors.Is(err, pkgerrors.ErrUnavailable):
		// load failures wrap their cause, which may itself be a schema or
		// configuration error
		return http.StatusServiceUnavailable, "model_unavailable"
	case errors.Is(err, pkgerrors.ErrSchema):
		return http.StatusUnprocessableEntity, "schema_error"
	case errors.Is(err, pkgerrors.ErrComputation):
		return http.StatusUnprocessableEntity, "computation_error"
	case errors.Is(err, pkgerrors.ErrInvalidArgument), errors.Is(err, pkgerrors.ErrConfiguration):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, pkgerrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// RespondError writes the envelope and records err on the context for the
// request logger.
func RespondError(c *gin.Context, err error) {
	status, code := Classify(err)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
		_ = c.Error(err)
	}
	var param string
	var apiErr *Error
	if errors.As(err, &apiErr) {
		param = apiErr.Param
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: code, Param: param},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
