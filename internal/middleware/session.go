package middleware

import (
	"net/http"

	"github.com/Elite-tch/privacycart/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	SessionHeader = "X-Session-Id"
	SessionKey    = "session_id"
)

// SessionMiddleware resolves the shopping session named by the
// X-Session-Id header and stores its id on the context.
func SessionMiddleware(shop service.ShopService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(SessionHeader)
			if id == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing "+SessionHeader+" header")
			}
			if !shop.Exists(c.Request().Context(), id) {
				return echo.NewHTTPError(http.StatusNotFound, "session not found")
			}
			c.Set(SessionKey, id)
			return next(c)
		}
	}
}
