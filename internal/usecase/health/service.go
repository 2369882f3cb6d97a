package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const (
	// ComponentIndex is the Redis search index.
	ComponentIndex = "index"
	// ComponentRecords is the SQL record store.
	ComponentRecords = "records"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// OK reports whether every component passed.
func (r Report) OK() bool { return r.Status == Healthy }

// Service coordinates health checks.
type Service struct {
	index   Pinger
	records Pinger
}

// New creates a Service.
func New(index, records Pinger) *Service {
	return &Service{index: index, records: records}
}

// Check pings every component.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		ComponentIndex:   ping(ctx, s.index),
		ComponentRecords: ping(ctx, s.records),
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
