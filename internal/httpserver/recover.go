package httpserver

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
)

// FatalRecover turns a handler panic into a 500 for the current request and reports it to
// onFatal, which is expected to stop the process.
func FatalRecover(onFatal func(error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				logging.FromContext(c.Request().Context()).Error("panic_recovered",
					"error", perr,
					"stack", string(debug.Stack()),
				)
				if onFatal != nil {
					onFatal(perr)
				}
				err = apperr.Fatal(perr)
			}()
			return next(c)
		}
	}
}
