package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. The core ranking path has no
	// external dependencies, so the service keeps serving when degraded.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks over the optional collaborators.
// The dataset itself is validated before serving starts and is always ok.
type Service struct {
	cache    CachePinger
	metadata MetadataChecker
}

// New creates a Service. Both collaborators can be nil.
func New(cache CachePinger, metadata MetadataChecker) *Service {
	return &Service{cache: cache, metadata: metadata}
}

// Check runs health checks against the configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		"dataset": CheckOK,
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.metadata != nil {
		if err := s.metadata.HealthCheck(ctx); err != nil {
			checks["metadata"] = CheckError
		} else {
			checks["metadata"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
