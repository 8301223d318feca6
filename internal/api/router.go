package api

import (
	"go-product-etl/internal/api/handler"
	"go-product-etl/pkg/router"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/runs", handler.CreateRun)
	r.GET("/api/v1/runs", handler.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/stages", handler.GetRunStages)
	r.GET("/api/v1/runs/*/logs", handler.GetRunLogs)
	// Generic run route last
	r.GET("/api/v1/runs/*", handler.GetRun)

	r.GET("/api/v1/snapshots", handler.ListSnapshots)

	r.GET("/metrics", promhttp.Handler().ServeHTTP)
	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
