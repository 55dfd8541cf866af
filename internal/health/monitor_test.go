package health

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbeMarksReachable(t *testing.T) {
	// A 401 still proves reachability; the probe carries no credential.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()

	m := NewMonitor(&http.Client{Timeout: time.Second}, upstream.URL, time.Minute)
	m.probe()

	if !m.Reachable() {
		t.Fatalf("expected reachable after a responding upstream")
	}
	if m.CheckedAt() == 0 {
		t.Fatalf("expected CheckedAt to be set after a probe")
	}
}

func TestProbeMarksUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // shut down before probing

	m := NewMonitor(&http.Client{Timeout: time.Second}, upstream.URL, time.Minute)
	m.probe()

	if m.Reachable() {
		t.Fatalf("expected unreachable after a transport failure")
	}
}
