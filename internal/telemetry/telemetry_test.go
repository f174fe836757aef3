package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"modelcore/internal/audit"
	"modelcore/internal/gateway"
	"modelcore/internal/registry"
)

func TestRegistryCollector(t *testing.T) {
	reg := registry.New()
	_, _ = reg.Load("a")
	_, _ = reg.Load("b")
	_, _ = reg.RecordInference("a")
	_, _ = reg.RecordInference("a")

	c := NewRegistryCollector(reg)
	want := `
# HELP modelcore_model_inferences_total Inference dispatches per loaded model
# TYPE modelcore_model_inferences_total counter
modelcore_model_inferences_total{model="a"} 2
modelcore_model_inferences_total{model="b"} 0
# HELP modelcore_registry_bytes Sum of loaded model sizes in bytes
# TYPE modelcore_registry_bytes gauge
modelcore_registry_bytes 0
# HELP modelcore_registry_models Number of loaded models
# TYPE modelcore_registry_models gauge
modelcore_registry_models 2
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want),
		"modelcore_registry_models", "modelcore_registry_bytes", "modelcore_model_inferences_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestMetricsWiredToRegistryAndGateway(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := registry.New()
	m, err := NewMetrics(promReg, reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	reg.SetPublisher(m)
	g := gateway.New(reg, gateway.WithObserver(m))

	_, _ = reg.Load("gpt-mini")
	_, _ = g.Infer(context.Background(), "gpt-mini", "hi")
	_, _ = g.Infer(context.Background(), "ghost", "hi")
	reg.Unload("gpt-mini")

	if got := testutil.ToFloat64(m.events.WithLabelValues(registry.EventLoad)); got != 1 {
		t.Fatalf("load events=%v", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues(registry.EventUnload)); got != 1 {
		t.Fatalf("unload events=%v", got)
	}
	if got := testutil.ToFloat64(m.inferences.WithLabelValues(gateway.OutcomeNotImplemented)); got != 1 {
		t.Fatalf("not_implemented=%v", got)
	}
	if got := testutil.ToFloat64(m.inferences.WithLabelValues(gateway.OutcomeNotFound)); got != 1 {
		t.Fatalf("not_found=%v", got)
	}
	if n, err := testutil.GatherAndCount(promReg, "modelcore_registry_models"); err != nil || n != 1 {
		t.Fatalf("registry collector not registered: n=%d err=%v", n, err)
	}
}

func TestNewMetricsDuplicateRegistration(t *testing.T) {
	promReg := prometheus.NewRegistry()
	if _, err := NewMetrics(promReg, nil); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewMetrics(promReg, nil); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestAuditCollector(t *testing.T) {
	dropLog := audit.New(10, audit.PolicyDropOldest)
	_, _ = dropLog.Write([]byte("aaaa\n"))
	_, _ = dropLog.Write([]byte("bbbb\n"))
	_, _ = dropLog.Write([]byte("cc\n"))

	want := `
# HELP modelcore_audit_bytes Bytes currently held in the audit buffer
# TYPE modelcore_audit_bytes gauge
modelcore_audit_bytes 8
# HELP modelcore_audit_dropped_bytes_total Oldest audit bytes evicted to make room
# TYPE modelcore_audit_dropped_bytes_total counter
modelcore_audit_dropped_bytes_total 5
# HELP modelcore_audit_rejected_bytes_total Audit bytes refused because the buffer was full
# TYPE modelcore_audit_rejected_bytes_total counter
modelcore_audit_rejected_bytes_total 0
`
	if err := testutil.CollectAndCompare(NewAuditCollector(dropLog), strings.NewReader(want)); err != nil {
		t.Fatalf("drop-oldest metrics: %v", err)
	}

	rejectLog := audit.New(4, audit.PolicyReject)
	_, _ = rejectLog.Write([]byte("hello\n"))
	promReg := prometheus.NewRegistry()
	if err := promReg.Register(NewAuditCollector(rejectLog)); err != nil {
		t.Fatalf("register: %v", err)
	}
	want = `
# HELP modelcore_audit_rejected_bytes_total Audit bytes refused because the buffer was full
# TYPE modelcore_audit_rejected_bytes_total counter
modelcore_audit_rejected_bytes_total 6
`
	if err := testutil.GatherAndCompare(promReg, strings.NewReader(want), "modelcore_audit_rejected_bytes_total"); err != nil {
		t.Fatalf("reject metrics: %v", err)
	}
}
