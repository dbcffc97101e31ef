package server

import (
	"net/http"
	"os"
	"strings"
	"testing"
)

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, "", 0)
	ts.build = BuildInfo{Version: "1.2.3", Commit: "abc"}

	rr := ts.get("/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	health := decodeJSON[Health](t, rr)
	if health.Status != HealthStatusHealthy {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.Version != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", health.Version)
	}
	if c := health.Components["storage"]; c.Status != ComponentStatusUp {
		t.Errorf("storage component = %+v, want up", c)
	}

	// The probe file must not linger in the directory.
	if names := ts.dirNames(t); len(names) != 0 {
		t.Errorf("health check left files behind: %v", names)
	}
}

func TestHandleHealth_StorageGone(t *testing.T) {
	ts := newTestServer(t, "", 0)
	if err := os.RemoveAll(ts.dir); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	rr := ts.get("/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rr.Code)
	}

	health := decodeJSON[Health](t, rr)
	if health.Status != HealthStatusUnhealthy {
		t.Errorf("status = %q, want unhealthy", health.Status)
	}
	if msg := health.Components["storage"].Message; strings.Contains(msg, ts.dir) {
		t.Errorf("health response leaks the storage path: %q", msg)
	}
}

func TestHandleLive(t *testing.T) {
	ts := newTestServer(t, "", 0)

	rr := ts.get("/health/live", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got := decodeJSON[map[string]string](t, rr)["status"]; got != "alive" {
		t.Errorf("status = %q, want alive", got)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	ts := newTestServer(t, "", 0)
	ts.build = BuildInfo{Version: "1.0.0", Commit: "deadbeef"}

	ts.upload(t, "one.txt", []byte("12345"), "")
	ts.get("/files/one.txt", "")
	ts.get("/files/missing.txt", "")

	rr := ts.get("/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rr.Body.String()
	for _, want := range []string{
		`filedrop_info{version="1.0.0",commit="deadbeef"} 1`,
		"filedrop_uploads_total 1\n",
		"filedrop_upload_bytes_total 5\n",
		"filedrop_downloads_total 1\n",
		"filedrop_request_errors_4xx_total 1\n",
		"filedrop_storage_files 1\n",
		"filedrop_storage_bytes 5\n",
		"# TYPE filedrop_upload_avg_duration_ms gauge",
		"# TYPE filedrop_download_avg_duration_ms gauge",
		"# TYPE filedrop_uptime_seconds counter",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestPrometheusLabel(t *testing.T) {
	if got := prometheusLabel("a\"b\\c\nd"); got != `a\"b\\c\nd` {
		t.Errorf("prometheusLabel = %q", got)
	}
}
