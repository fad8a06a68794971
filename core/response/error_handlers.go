package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/blueprint/core/handler"
)

// AsHTTPError converts any error to an HTTPError. Errors reporting a status
// through StatusCode() anywhere in their chain keep it; everything else is
// a 500. The original message is kept in Details under "cause".
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = HTTPError{
			Status:  status,
			Code:    "error",
			Message: http.StatusText(status),
		}
		if base.Message == "" {
			base = ErrInternalServerError
		}
	}
	return base.WithError(err)
}

// ErrorHandler is the default error handler rendering errors as plain text.
func ErrorHandler(_ handler.Context, err error) handler.Response {
	httpErr := AsHTTPError(err)
	return StringWithStatus(httpErr.Message, httpErr.Status)
}

// JSONErrorHandler renders errors as JSON objects carrying the code,
// message and details of the HTTPError.
func JSONErrorHandler(_ handler.Context, err error) handler.Response {
	httpErr := AsHTTPError(err)
	if httpErr.Status >= http.StatusInternalServerError {
		httpErr.Details = nil
	}
	return JSONWithStatus(httpErr, httpErr.Status)
}
