// Package jwtx reads the identity the auth middleware stored on the
// request context.
package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"
)

func UserID(c echo.Context) (int64, error) {
	if id, ok := c.Get("user_id").(int64); ok && id > 0 {
		return id, nil
	}
	return 0, errors.New("no user in context")
}

func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
