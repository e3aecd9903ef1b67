// Package auth extracts the calling actor from a request. Identity issuance
// lives in an external session service; this package only verifies the token
// it minted and places an access.Actor on the request context. There is no
// process-wide session state.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/campushealth/portal/internal/access"
)

type contextKey string

const actorKey contextKey = "portal_actor"

// Claims is the portal token payload. Subject carries the actor id.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor placed by the auth middleware.
func ActorFromContext(ctx context.Context) (access.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(access.Actor)
	return actor, ok
}

// JWTMiddleware verifies an HS256 bearer token and stores the actor on the
// request context. Requests without a valid token get 401.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			role, err := access.ParseRole(claims.Role)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid role claim")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing subject claim")
			}

			actor := access.Actor{ID: claims.Subject, Role: role}
			c.SetRequest(c.Request().WithContext(WithActor(c.Request().Context(), actor)))
			return next(c)
		}
	}
}

// DevAuthMiddleware reads the actor from X-Actor-ID / X-Actor-Role headers.
// Development only; Load() warns loudly when this is active.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Actor-ID")
			rawRole := c.Request().Header.Get("X-Actor-Role")
			if id == "" {
				id = "dev-admin"
			}
			if rawRole == "" {
				rawRole = string(access.RoleAdmin)
			}
			role, err := access.ParseRole(rawRole)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid X-Actor-Role")
			}
			actor := access.Actor{ID: id, Role: role}
			c.SetRequest(c.Request().WithContext(WithActor(c.Request().Context(), actor)))
			return next(c)
		}
	}
}

// RequireRole gates a route group to the given roles. Admin always passes.
// This is coarse route protection; record-level ownership checks stay in
// access.Policy inside the services.
func RequireRole(roles ...access.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "no actor")
			}
			if actor.Role == access.RoleAdmin {
				return next(c)
			}
			for _, r := range roles {
				if actor.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}
