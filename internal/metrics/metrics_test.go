package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	rec := NewPrometheusRecorder()

	rec.Transition("album", 1, 2)
	rec.Transition("album", 1, 2)
	rec.Blocked("album", 2)
	rec.Submitted("album", false, 20*time.Millisecond)
	rec.Submitted("album", true, 40*time.Millisecond)
	rec.IntakeRejected("request", "size")
	rec.FlowStarted("request")
	rec.FlowEvicted("request")

	if got := testutil.ToFloat64(rec.transitions.WithLabelValues("album", "1", "2")); got != 2 {
		t.Fatalf("expected 2 transitions, got %v", got)
	}
	if got := testutil.ToFloat64(rec.blocked.WithLabelValues("album", "2")); got != 1 {
		t.Fatalf("expected 1 blocked advance, got %v", got)
	}
	if got := testutil.ToFloat64(rec.submissions.WithLabelValues("album", "failure")); got != 1 {
		t.Fatalf("expected 1 failed submission, got %v", got)
	}
	if got := testutil.CollectAndCount(rec.duration); got != 1 {
		t.Fatalf("expected one duration series, got %d", got)
	}
	if got := testutil.ToFloat64(rec.rejected.WithLabelValues("request", "size")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	rec := NewPrometheusRecorder()
	rec.FlowStarted("album")

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `memora_flows_started_total{flow="album"} 1`) {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}
