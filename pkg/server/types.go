package server

import (
	"context"
	"github.com/packagewjx/traffic-classifier/pkg/core"
)

const (
	PathHealth   = "/health"
	PathClassify = "/classify"
	PathMetrics  = "/metrics"
)

type API interface {
	Health(ctx context.Context) (*core.HealthStatus, error)

	Classify(ctx context.Context, features core.Features) (*core.Classification, error)
}
