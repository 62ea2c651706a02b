package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type recordingProbe struct {
	NoOpProbe
	operations []string
	errs       []error
}

func (p *recordingProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	p.operations = append(p.operations, entity+"."+operation)
	p.errs = append(p.errs, err)
}

func TestOperation_End(t *testing.T) {
	probe := &recordingProbe{}
	boom := errors.New("boom")

	_, op := StartOperation(context.Background(), probe, "FindByID", "user", nil)
	err := op.End(boom)

	assert.Same(t, boom, err)
	assert.Equal(t, []string{"user.FindByID"}, probe.operations)
	assert.Equal(t, []error{boom}, probe.errs)
}

func TestAppMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewAppMetrics(registry)
	ctx := context.Background()

	metrics.RecordUserOperation(ctx, "create", nil)
	metrics.RecordUserOperation(ctx, "create", errors.New("duplicate"))
	metrics.RecordCacheHit(ctx, "user")
	metrics.RecordQueryWarning(ctx, "orderByKey")
	metrics.RecordRequest(ctx, "GET", "/api/v1/users", "200", 10*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.userOperations.WithLabelValues("create", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.userOperations.WithLabelValues("create", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits.WithLabelValues("user")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.queryWarnings.WithLabelValues("orderByKey")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/api/v1/users", "200")))
}

func TestOTELProbe_Spans(t *testing.T) {
	metrics := NewAppMetrics(prometheus.NewRegistry())
	probe := NewOTELProbe(nil, metrics)

	ctx, span := probe.StartRepositorySpan(context.Background(), "Create", "user", map[string]interface{}{
		"db.system": "sqlite",
		"rows":      1,
	})
	span.SetStatus("ok", "")
	span.End()

	assert.NotNil(t, ctx)
	probe.RecordBusinessEvent(ctx, "created", "user", "id", map[string]interface{}{"user_name": "user1"})

	probe.RecordRepositoryOperation(ctx, "Create", "user", time.Millisecond, nil)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Create", "user")))
}
