// Package health defines the dependency probe capability implemented by
// every component with an external dependency, plus an aggregator that
// collects probes without knowing concrete types.
package health

import "context"

// Status is the outcome of one probe.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Healthy builds a passing status.
func Healthy(name, message string) Status {
	return Status{Name: name, Healthy: true, Message: message}
}

// UnHealthy builds a failing status.
func UnHealthy(name, message string) Status {
	return Status{Name: name, Healthy: false, Message: message}
}

// Check is the narrow probe interface.
type Check interface {
	Check(ctx context.Context) Status
}

// Service aggregates probes for the /health route.
type Service struct {
	checks []Check
}

func NewService(checks ...Check) *Service {
	return &Service{checks: checks}
}

// Result is the aggregated health report.
type Result struct {
	Healthy bool     `json:"healthy"`
	Checks  []Status `json:"checks"`
}

func (s *Service) Check(ctx context.Context) Result {
	result := Result{Healthy: true, Checks: make([]Status, 0, len(s.checks))}
	for _, c := range s.checks {
		status := c.Check(ctx)
		if !status.Healthy {
			result.Healthy = false
		}
		result.Checks = append(result.Checks, status)
	}
	return result
}
