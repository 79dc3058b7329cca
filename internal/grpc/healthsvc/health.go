package healthsvc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"pagesentry/internal/infrastructure/cache"
	"pagesentry/internal/infrastructure/database"
)

const serviceName = "pagesentry.v1.AnalysisService"

// RegisterHealthServer registers the standard gRPC health check service and
// keeps its status current against Redis and the optional Postgres store.
func RegisterHealthServer(ctx context.Context, grpcServer *grpc.Server, db *database.PostgresDB, c *cache.RedisCache) {
	healthServer := health.NewServer()

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			healthy := true
			if db != nil {
				if err := db.Pool().Ping(ctx); err != nil {
					healthy = false
				}
			}
			if c != nil {
				if _, err := c.Client().Ping(ctx).Result(); err != nil {
					healthy = false
				}
			}

			status := grpc_health_v1.HealthCheckResponse_SERVING
			if !healthy {
				status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			}
			healthServer.SetServingStatus("", status)
			healthServer.SetServingStatus(serviceName, status)
		}
	}()

	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
}
