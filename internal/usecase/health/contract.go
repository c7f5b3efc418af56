package health

import "context"

// CachePinger checks cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// MetadataChecker checks metadata provider availability.
type MetadataChecker interface {
	HealthCheck(ctx context.Context) error
}
