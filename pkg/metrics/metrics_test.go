package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.GraphNodes == nil {
		t.Error("GraphNodes not initialized")
	}
	if r.JoinerRequestsTotal == nil {
		t.Error("JoinerRequestsTotal not initialized")
	}
	if r.LayoutTicksTotal == nil {
		t.Error("LayoutTicksTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/graph", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("POST", "/explore", "200", 200*time.Millisecond)
	r.RecordHTTPRequest("GET", "/graph", "404", 50*time.Millisecond)

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/graph", "200")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if v := counterValue(t, counter); v != 1 {
		t.Errorf("Counter value = %v, want 1", v)
	}
}

func TestUpdateGraph(t *testing.T) {
	r := NewRegistry()

	r.UpdateGraph(12, 20, 2, 17)
	r.SetNodeLimit(40)

	if v := gaugeValue(t, r.GraphNodes); v != 12 {
		t.Errorf("GraphNodes = %v, want 12", v)
	}
	if v := gaugeValue(t, r.GraphEdges); v != 20 {
		t.Errorf("GraphEdges = %v, want 20", v)
	}
	if v := gaugeValue(t, r.GraphCommunities); v != 2 {
		t.Errorf("GraphCommunities = %v, want 2", v)
	}
	if v := gaugeValue(t, r.GraphRenderedNodes); v != 17 {
		t.Errorf("GraphRenderedNodes = %v, want 17", v)
	}
	if v := gaugeValue(t, r.GraphNodeLimit); v != 40 {
		t.Errorf("GraphNodeLimit = %v, want 40", v)
	}
}

func TestRecordCommunityOperation(t *testing.T) {
	r := NewRegistry()

	r.RecordCommunityOperation(OpCollapse, 4)
	r.RecordCommunityOperation(OpCollapse, 3)
	r.RecordCommunityOperation(OpDissolve, 0)

	collapse, _ := r.CommunityOperationsTotal.GetMetricWithLabelValues(OpCollapse)
	if v := counterValue(t, collapse); v != 2 {
		t.Errorf("collapse counter = %v, want 2", v)
	}
	dissolve, _ := r.CommunityOperationsTotal.GetMetricWithLabelValues(OpDissolve)
	if v := counterValue(t, dissolve); v != 1 {
		t.Errorf("dissolve counter = %v, want 1", v)
	}

	var metric dto.Metric
	if err := r.CommunitySize.Write(&metric); err != nil {
		t.Fatalf("Failed to write histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 || metric.Histogram.GetSampleSum() != 7 {
		t.Errorf("size histogram count=%d sum=%v", metric.Histogram.GetSampleCount(), metric.Histogram.GetSampleSum())
	}
}

func TestRecordJoiner(t *testing.T) {
	r := NewRegistry()

	r.RecordJoinerRequest("getCommunity", "success", 5*time.Millisecond)
	r.RecordJoinerRequest("getCommunity", "error", time.Millisecond)
	r.RecordJoinerDropped()
	r.RecordJoinerDropped()

	ok, _ := r.JoinerRequestsTotal.GetMetricWithLabelValues("getCommunity", "success")
	if v := counterValue(t, ok); v != 1 {
		t.Errorf("success counter = %v, want 1", v)
	}
	if v := counterValue(t, r.JoinerDroppedTotal); v != 2 {
		t.Errorf("dropped counter = %v, want 2", v)
	}

	hist, err := r.JoinerDuration.GetMetricWithLabelValues("getCommunity")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	var metric dto.Metric
	if err := hist.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Sample count = %v, want 2", metric.Histogram.GetSampleCount())
	}
}

func TestLayoutAndZoomMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordLayoutStart()
	for i := 0; i < 3; i++ {
		r.RecordLayoutTick(0.4)
	}
	r.RecordZoom(1.5, 88)

	if v := counterValue(t, r.LayoutRunsTotal); v != 1 {
		t.Errorf("runs = %v, want 1", v)
	}
	if v := counterValue(t, r.LayoutTicksTotal); v != 3 {
		t.Errorf("ticks = %v, want 3", v)
	}
	if v := gaugeValue(t, r.LayoutAlpha); v != 0.4 {
		t.Errorf("alpha = %v, want 0.4", v)
	}
	if v := gaugeValue(t, r.ZoomScale); v != 1.5 {
		t.Errorf("scale = %v, want 1.5", v)
	}
	if v := gaugeValue(t, r.ZoomLimit); v != 88 {
		t.Errorf("limit = %v, want 88", v)
	}
}

func TestSystemMetrics(t *testing.T) {
	r := NewRegistry()

	r.UpdateSystemMetrics(time.Now().Add(-2 * time.Second))

	if v := gaugeValue(t, r.UptimeSeconds); v < 2 {
		t.Errorf("uptime = %v, want >= 2", v)
	}
	if v := gaugeValue(t, r.GoRoutines); v < 1 {
		t.Errorf("goroutines = %v, want >= 1", v)
	}
}

func TestGetPrometheusRegistry(t *testing.T) {
	r := NewRegistry()
	promRegistry := r.GetPrometheusRegistry()

	if promRegistry == nil {
		t.Fatal("GetPrometheusRegistry() returned nil")
	}

	metrics, err := promRegistry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	expectedMetrics := []string{
		"graphviewer_graph_nodes",
		"graphviewer_joiner_dropped_total",
		"graphviewer_layout_ticks_total",
		"graphviewer_uptime_seconds",
	}

	metricNames := make(map[string]bool)
	for _, m := range metrics {
		metricNames[m.GetName()] = true
	}

	for _, expected := range expectedMetrics {
		if !metricNames[expected] {
			t.Errorf("Expected metric %s not found", expected)
		}
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.UpdateGraph(3, 2, 0, 3)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "graphviewer_graph_nodes 3") {
		t.Errorf("exposition missing graph nodes gauge:\n%s", body)
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.RecordJoinerRequest("insertEdge", "success", time.Microsecond)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	counter, err := r.JoinerRequestsTotal.GetMetricWithLabelValues("insertEdge", "success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if v := counterValue(t, counter); v != 1000 {
		t.Errorf("Counter = %v, want 1000", v)
	}
}

func TestMetricNaming(t *testing.T) {
	r := NewRegistry()

	metrics, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	for _, m := range metrics {
		name := m.GetName()
		if !strings.HasPrefix(name, "graphviewer_") {
			t.Errorf("Metric %s does not have graphviewer_ prefix", name)
		}
	}
}

func BenchmarkRecordJoinerRequest(b *testing.B) {
	r := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RecordJoinerRequest("insertEdge", "success", time.Microsecond)
	}
}

func BenchmarkRecordLayoutTick(b *testing.B) {
	r := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RecordLayoutTick(0.3)
	}
}
