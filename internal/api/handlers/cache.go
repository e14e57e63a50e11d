package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"letterchain/internal/cache"
	"letterchain/pkg/utils"
)

// CacheStatsHandler reports redis counters for monitoring
func CacheStatsHandler(redisCache *cache.RedisCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		if redisCache == nil {
			return utils.NewUnavailableError("Cache is not configured")
		}

		stats, err := redisCache.GetStats(c.Request().Context())
		if err != nil {
			return utils.NewInternalServerError(err.Error())
		}

		return c.JSON(http.StatusOK, stats)
	}
}
