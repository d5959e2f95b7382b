package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/elkhamyyali/ecommerceback/pkg/logging"
	"github.com/elkhamyyali/ecommerceback/pkg/tokens"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"

	accessCookie = "accessToken"
)

// Verifier checks access tokens issued elsewhere. It never issues or refreshes them.
type Verifier struct {
	JWTSecret []byte
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *Verifier) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

// RequireRole admits only callers whose role is one of roles.
func (m *Verifier) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
			if !slices.Contains(roles, claims.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to access this route")
			}
			return nil
		})
	}
}

func (m *Verifier) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		raw := tokenFromRequest(c)
		if raw == "" {
			l.Warn("auth_error", "status", 401, "reason", "missing access token")
			return echo.NewHTTPError(http.StatusUnauthorized, "You are not login, please login to get access this route")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("auth_error", "status", 401, "reason", "invalid access token", "error", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "access token expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				l.Warn("auth_error", "status", 403, "reason", "role not allowed", "role", claims.Role)
				return err
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func tokenFromRequest(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if v, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(v)
		}
	}
	if ck, err := c.Cookie(accessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(ContextUserID, claims.Subject)
	c.Set(ContextRole, claims.Role)
}
