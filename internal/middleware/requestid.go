package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// requestIDHeader carries the request id to the client for support tickets
// and log correlation.
const requestIDHeader = "X-Request-ID"

// contextKeyRequestID stores the request id in the Echo context.
const contextKeyRequestID = "request_id"

// RequestID returns middleware that assigns a UUID to every request. An id
// supplied by a trusted upstream proxy in X-Request-ID is kept as-is so a
// request can be traced across hops.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			c.Set(contextKeyRequestID, id)
			c.Response().Header().Set(requestIDHeader, id)

			return next(c)
		}
	}
}

// GetRequestID returns the request id assigned by RequestID, or empty string
// if the middleware is not applied.
func GetRequestID(c echo.Context) string {
	id, ok := c.Get(contextKeyRequestID).(string)
	if !ok {
		return ""
	}
	return id
}
