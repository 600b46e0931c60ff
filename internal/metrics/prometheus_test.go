package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveTask(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg)

	before := testutil.ToFloat64(TaskTotal.WithLabelValues("collect_dao", "success"))
	ObserveTask("collect_dao", "success", 150*time.Millisecond)
	after := testutil.ToFloat64(TaskTotal.WithLabelValues("collect_dao", "success"))
	if after-before != 1 {
		t.Fatalf("expect counter to grow by 1, got %v", after-before)
	}
	if n := testutil.CollectAndCount(TaskDuration); n == 0 {
		t.Fatalf("expect histogram series to be collected")
	}
}
