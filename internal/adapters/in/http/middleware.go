package http

import (
	"net/http"
	"slices"
	"strings"

	"cleaning/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// Identity headers are set by the upstream auth gateway.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

type Role string

const (
	RoleClient  Role = "client"
	RoleCleaner Role = "cleaner"
	// RoleSystem is used by internal callers such as back-office settlement tools.
	RoleSystem Role = "system"
)

type Actor struct {
	ID   kernel.UUID
	Role Role
}

const actorContextKey = "actor"

func requireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := kernel.UUIDFromString(strings.TrimSpace(c.Request().Header.Get(HeaderUserID)))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed "+HeaderUserID+" header")
		}

		role := Role(strings.ToLower(strings.TrimSpace(c.Request().Header.Get(HeaderUserRole))))
		switch role {
		case RoleClient, RoleCleaner, RoleSystem:
		default:
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or unknown "+HeaderUserRole+" header")
		}

		c.Set(actorContextKey, Actor{ID: id, Role: role})
		return next(c)
	}
}

// requireRole must run after requireActor.
func requireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !slices.Contains(roles, actorFrom(c).Role) {
				return echo.NewHTTPError(http.StatusForbidden, "role is not allowed to call this endpoint")
			}
			return next(c)
		}
	}
}

func authenticated(roles ...Role) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{requireActor, requireRole(roles...)}
}

func actorFrom(c echo.Context) Actor {
	actor, _ := c.Get(actorContextKey).(Actor)
	return actor
}
