package common

import (
	"fmt"
	"log"
	"net/http"

	"github.com/heptiolabs/healthcheck"
)

type HealthCheckArgs struct {
	HealthPort uint `arg:"--health-port,env:HEALTH_PORT" default:"8082"`
}

// HealthHandler serves /live and /ready. Each check is run on every ready
// probe and the server reports not ready while any of them fails.
func HealthHandler(checks map[string]healthcheck.Check) healthcheck.Handler {
	health := healthcheck.NewHandler()
	for name, check := range checks {
		health.AddReadinessCheck(name, check)
	}
	return health
}

func StartHealthCheckServer(port uint, checks map[string]healthcheck.Check) {
	health := HealthHandler(checks)
	go func() {
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), health)
		if err != nil {
			log.Fatalf("health check server stopped unexpectedly: %v", err)
		}
	}()
}
