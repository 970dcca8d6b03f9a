// Package health aggregates readiness checks for the index store and the
// embedding provider.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
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
	Status         Status                 `json:"status"`
	Checks         map[string]CheckResult `json:"checks"`
	EmbeddingModel string                 `json:"embedding_model"`
	ComponentCount int                    `json:"component_count"`
}

// Service coordinates health checks.
type Service struct {
	store     StoreChecker
	embedding EmbeddingChecker
	model     string
}

// New creates a Service. embedding can be nil for providers without a
// reachable control plane.
func New(store StoreChecker, embedding EmbeddingChecker, model string) *Service {
	return &Service{store: store, embedding: embedding, model: model}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	count := 0
	if s.store.HealthCheck(ctx) {
		checks["store"] = CheckOK
		if n, err := s.store.Count(ctx); err == nil {
			count = n
		}
	} else {
		checks["store"] = CheckError
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{
		Status:         status,
		Checks:         checks,
		EmbeddingModel: s.model,
		ComponentCount: count,
	}
}
