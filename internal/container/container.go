package container

import (
	"database/sql"
	"os"

	"pigbot/internal/interfaces"
	"pigbot/internal/pkg/caching"
	"pigbot/internal/pkg/limiter"
	"pigbot/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"
)

// New wires every dependency of the bot. All binaries share the same graph;
// each one only invokes the services it needs.
func New(vs map[string]string) *do.Injector {
	injector := do.New()

	vs["API_MODE"] = os.Getenv("API_MODE")
	vs["API_ORIGINS"] = os.Getenv("API_ORIGINS")
	if vs["API_MODE"] == "" {
		vs["API_MODE"] = "production"
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		if vs["API_MODE"] == "debug" {
			return zap.NewDevelopment()
		}
		return zap.NewProduction()
	})

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "pigbot.db"
		}

		sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
		if err != nil {
			return nil, err
		}

		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	})

	do.ProvideNamed(injector, "redis-cache", provideRedis("REDIS_CACHE"))
	do.ProvideNamed(injector, "redis-limiter", provideRedis("REDIS_LIMITER"))
	do.ProvideNamed(injector, "redis-mutex", provideRedis("REDIS_MUTEX"))

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
		if err != nil {
			return nil, err
		}

		return limiter.New(dbRedis), nil
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		return redsync.New(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.SocialPlatform, error) {
		return services.NewServiceTwitter(injector)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.PersonaGenerator, error) {
		return services.NewServicePersona(injector)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.MarketData, error) {
		return services.NewServiceMarket(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceReward, error) {
		return services.NewServiceReward(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceAnalysis, error) {
		return services.NewServiceAnalysis(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceDispatcher, error) {
		return services.NewServiceDispatcher(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceEngagement, error) {
		return services.NewServiceEngagement(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceCorpus, error) {
		return services.NewServiceCorpus(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceOracle, error) {
		return services.NewServiceOracle(injector)
	})

	return injector
}

// provideRedis reads the purpose-specific URL first and falls back to the
// shared REDIS_URL, so single-instance deployments need one variable only.
func provideRedis(envKey string) func(i *do.Injector) (redis.UniversalClient, error) {
	return func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv(envKey)
		if url == "" {
			url = os.Getenv("REDIS_URL")
		}

		return db.InitRedis(&db.RedisConfig{URL: url})
	}
}
