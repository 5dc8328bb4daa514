package delivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	Products *ProductHandler
	Carts    *CartHandler
	Reports  *ReportHandler
	Health   map[string]HealthCheck
}

func NewRouter(h Handlers, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery(), RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		status := make(map[string]string, len(h.Health))
		healthy := true
		for name, check := range h.Health {
			if err := check(c.Request.Context()); err != nil {
				logger.Warnf("Health check %s failed: %v", name, err)
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, Response{Status: "Fail", Message: "Unhealthy", Data: status})
			return
		}
		SuccessResponse(c, http.StatusOK, "Healthy", status)
	})

	h.Products.RegisterRoutes(router)
	h.Carts.RegisterRoutes(router)
	h.Reports.RegisterRoutes(router)
	return router
}
