package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorHandler renders every error as {"status","message"}; status is "fail" for 4xx and
// "error" otherwise. In development the full error chain is added.
func ErrorHandler(development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, echo.ErrNotFound) {
			err = apperr.NotFound("Can't find this route: " + c.Request().URL.RequestURI())
		}

		code, msg := classify(err)

		body := errorResponse{Status: "error", Message: msg}
		if code >= 400 && code < 500 {
			body.Status = "fail"
		}
		if development {
			body.Error = err.Error()
		}

		if code >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", code, "error", err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			logging.FromContext(c.Request().Context()).Error("write_error_response", "error", werr)
		}
	}
}

func classify(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, msg
	}
	return apperr.HTTPStatus(err), apperr.PublicMessage(err)
}
