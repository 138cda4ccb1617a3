package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticCheck struct {
	status Status
}

func (c staticCheck) Check(context.Context) Status { return c.status }

func TestServiceAggregatesChecks(t *testing.T) {
	service := NewService(
		staticCheck{status: Healthy("a", "ok")},
		staticCheck{status: Healthy("b", "ok")},
	)

	result := service.Check(context.Background())
	assert.True(t, result.Healthy)
	assert.Len(t, result.Checks, 2)
}

func TestServiceIsUnhealthyWhenAnyCheckFails(t *testing.T) {
	service := NewService(
		staticCheck{status: Healthy("a", "ok")},
		staticCheck{status: UnHealthy("b", "down")},
	)

	result := service.Check(context.Background())
	assert.False(t, result.Healthy)
}
