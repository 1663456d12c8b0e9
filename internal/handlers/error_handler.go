package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/socialape/screams-backend/internal/apierror"
)

// NewHTTPErrorHandler normalizes every error escaping a handler into the
// {error_type, message, errors?} envelope. Unexpected failures are logged
// and collapsed into a generic 500; no retries are attempted.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *apierror.APIError
		if !errors.As(err, &apiErr) {
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				apiErr = apierror.New(httpErr.Code, typeForStatus(httpErr.Code), fmt.Sprintf("%v", httpErr.Message))
			} else {
				logger.Error("unhandled error", "error", err, "uri", c.Request().RequestURI)
				apiErr = apierror.Internal(err)
			}
		}

		if jsonErr := c.JSON(apiErr.Code, apiErr); jsonErr != nil {
			logger.Error("failed to write error response", "error", jsonErr)
		}
	}
}

func typeForStatus(code int) string {
	switch {
	case code >= 500:
		return apierror.TypeInternal
	case code >= 400:
		return apierror.TypeNetwork
	default:
		return apierror.TypeUnknown
	}
}
