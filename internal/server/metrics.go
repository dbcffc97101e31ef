package server

import (
	"sync"
	"time"
)

// Metrics holds in-process counters for one Server.
type Metrics struct {
	mu sync.RWMutex

	// Upload metrics
	uploadsTotal        int64
	uploadBytesTotal    int64
	uploadErrorsTotal   int64
	uploadOversizeTotal int64
	uploadDurationTotal time.Duration

	// Download metrics
	downloadsTotal        int64
	downloadBytesTotal    int64
	downloadErrorsTotal   int64
	downloadDurationTotal time.Duration

	authFailuresTotal int64

	// System metrics
	requestsTotal    int64
	requestErrors5xx int64
	requestErrors4xx int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordUpload records a successful upload
func (m *Metrics) RecordUpload(bytes int64, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadsTotal++
	m.uploadBytesTotal += bytes
	m.uploadDurationTotal += duration
}

// RecordUploadError records an upload that failed in storage
func (m *Metrics) RecordUploadError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadErrorsTotal++
}

// RecordOversize records an upload rejected for exceeding the size limit
func (m *Metrics) RecordOversize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadOversizeTotal++
}

// RecordDownload records a completed download
func (m *Metrics) RecordDownload(bytes int64, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadsTotal++
	m.downloadBytesTotal += bytes
	m.downloadDurationTotal += duration
}

// RecordDownloadError records a download that failed in storage or mid-stream
func (m *Metrics) RecordDownloadError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadErrorsTotal++
}

// RecordAuthFailure records a request rejected by the API key check
func (m *Metrics) RecordAuthFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authFailuresTotal++
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++

	if statusCode >= 500 {
		m.requestErrors5xx++
	} else if statusCode >= 400 {
		m.requestErrors4xx++
	}
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		UploadsTotal:          m.uploadsTotal,
		UploadBytesTotal:      m.uploadBytesTotal,
		UploadErrorsTotal:     m.uploadErrorsTotal,
		UploadOversizeTotal:   m.uploadOversizeTotal,
		UploadAvgDurationMs:   avgDuration(m.uploadDurationTotal, m.uploadsTotal),
		DownloadsTotal:        m.downloadsTotal,
		DownloadBytesTotal:    m.downloadBytesTotal,
		DownloadErrorsTotal:   m.downloadErrorsTotal,
		DownloadAvgDurationMs: avgDuration(m.downloadDurationTotal, m.downloadsTotal),
		AuthFailuresTotal:     m.authFailuresTotal,
		RequestsTotal:         m.requestsTotal,
		RequestErrors5xx:      m.requestErrors5xx,
		RequestErrors4xx:      m.requestErrors4xx,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	UploadsTotal        int64   `json:"uploads_total"`
	UploadBytesTotal    int64   `json:"upload_bytes_total"`
	UploadErrorsTotal   int64   `json:"upload_errors_total"`
	UploadOversizeTotal int64   `json:"upload_oversize_total"`
	UploadAvgDurationMs float64 `json:"upload_avg_duration_ms"`

	DownloadsTotal        int64   `json:"downloads_total"`
	DownloadBytesTotal    int64   `json:"download_bytes_total"`
	DownloadErrorsTotal   int64   `json:"download_errors_total"`
	DownloadAvgDurationMs float64 `json:"download_avg_duration_ms"`

	AuthFailuresTotal int64 `json:"auth_failures_total"`

	RequestsTotal    int64 `json:"requests_total"`
	RequestErrors5xx int64 `json:"request_errors_5xx"`
	RequestErrors4xx int64 `json:"request_errors_4xx"`
}

func avgDuration(total time.Duration, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(total.Milliseconds()) / float64(count)
}
