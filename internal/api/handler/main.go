package handler

import (
	"net/http"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
	APIKey    string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🐷")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)

		i := groupInventory{cfg.Container}
		routesAPIv1.GET("/inventory/:username", i.Show)

		a := groupAnalysis{cfg.Container}
		routesAPIv1.GET("/analysis/:username", a.Show,
			middlewareRateLimit(cfg.Container, "analysis", redis_rate.PerMinute(10)))

		routesAPIv1Admin := routesAPIv1.Group("")
		{
			routesAPIv1Admin.Use(AuthnAdmin(cfg.APIKey))

			j := groupJobs{cfg.Container}
			routesAPIv1Admin.POST("/jobs/dispatch", j.RunDispatch)
			routesAPIv1Admin.POST("/jobs/engagement", j.RunEngagement)
			routesAPIv1Admin.POST("/jobs/corpus", j.RunCorpus)
			routesAPIv1Admin.POST("/jobs/oracle", j.RunOracle)

			rw := groupReward{cfg.Container}
			routesAPIv1Admin.GET("/reward/current", rw.Current)
			routesAPIv1Admin.POST("/reward/rotate", rw.Rotate)
		}
	}

	return r, nil
}
