package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a plain-text liveness probe for load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// HealthJSON reports liveness in the JSON shape the web client polls.
func HealthJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "message": "DropIt API is running"})
}
