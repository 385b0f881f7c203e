package handler

import (
	"errors"

	"pigbot/internal/interfaces"
	"pigbot/internal/pkg/limiter"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

// AuthnAdmin guards the job and reward routes with a static key. The key is
// operator-held, not end-user auth.
func AuthnAdmin(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("X-Api-Key")
			if key == "" || header != key {
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("unauthorized"), errorx.Authn), -1)
				return nil
			}

			return next(c)
		}
	}
}

func middlewareRateLimit(container *do.Injector, name string, limit redis_rate.Limit) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rateLimiter, err := do.Invoke[interfaces.Limiter](container)
			if err != nil {
				return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
			}

			key := name + ":" + c.RealIP()
			if err := rateLimiter.Allow(c.Request().Context(), key, limit); err != nil {
				if errors.Is(err, limiter.ErrRateLimited) {
					//nolint:errcheck
					httpx.Abort(c, errorx.Wrap(err, errorx.RateLimiting), -1)
					return nil
				}
				return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
			}

			return next(c)
		}
	}
}
