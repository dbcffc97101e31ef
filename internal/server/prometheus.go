// prometheus.go - Prometheus text-format exporter for the in-process counters.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

func writeMetric(b *strings.Builder, name, kind, help string, value any) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(b, "%s %v\n\n", name, value)
}

// prometheusLabel escapes a label value.
func prometheusLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "\n", "\\n")
	return value
}

// prometheusHandler serves GET /metrics. Storage gauges are computed from a
// fresh directory listing on every scrape.
func (s *Server) prometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.metrics.Snapshot()

		var out strings.Builder

		out.WriteString("# HELP filedrop_info Application version info\n")
		out.WriteString("# TYPE filedrop_info gauge\n")
		fmt.Fprintf(&out, "filedrop_info{version=\"%s\",commit=\"%s\"} 1\n\n",
			prometheusLabel(s.build.Version), prometheusLabel(s.build.Commit))

		writeMetric(&out, "filedrop_requests_total", "counter", "Total number of HTTP requests", snap.RequestsTotal)
		writeMetric(&out, "filedrop_request_errors_4xx_total", "counter", "HTTP responses with a 4xx status", snap.RequestErrors4xx)
		writeMetric(&out, "filedrop_request_errors_5xx_total", "counter", "HTTP responses with a 5xx status", snap.RequestErrors5xx)

		writeMetric(&out, "filedrop_uploads_total", "counter", "Total number of stored uploads", snap.UploadsTotal)
		writeMetric(&out, "filedrop_upload_bytes_total", "counter", "Total bytes stored by uploads", snap.UploadBytesTotal)
		writeMetric(&out, "filedrop_upload_errors_total", "counter", "Uploads that failed in storage", snap.UploadErrorsTotal)
		writeMetric(&out, "filedrop_upload_oversize_total", "counter", "Uploads rejected for exceeding the size limit", snap.UploadOversizeTotal)
		writeMetric(&out, "filedrop_upload_avg_duration_ms", "gauge", "Mean duration of stored uploads in milliseconds", snap.UploadAvgDurationMs)

		writeMetric(&out, "filedrop_downloads_total", "counter", "Total number of completed downloads", snap.DownloadsTotal)
		writeMetric(&out, "filedrop_download_bytes_total", "counter", "Total bytes sent by downloads", snap.DownloadBytesTotal)
		writeMetric(&out, "filedrop_download_errors_total", "counter", "Downloads that failed", snap.DownloadErrorsTotal)
		writeMetric(&out, "filedrop_download_avg_duration_ms", "gauge", "Mean duration of completed downloads in milliseconds", snap.DownloadAvgDurationMs)

		writeMetric(&out, "filedrop_auth_failures_total", "counter", "Requests rejected by the API key check", snap.AuthFailuresTotal)

		if files, err := s.store.List(); err == nil {
			var total int64
			for _, f := range files {
				total += f.Size
			}
			writeMetric(&out, "filedrop_storage_files", "gauge", "Number of stored files", len(files))
			writeMetric(&out, "filedrop_storage_bytes", "gauge", "Total size of stored files in bytes", total)
		}

		writeMetric(&out, "filedrop_uptime_seconds", "counter", "Application uptime in seconds",
			fmt.Sprintf("%.0f", time.Since(s.started).Seconds()))

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out.String()))
	}
}
