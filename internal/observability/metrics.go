package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	stageLatency *HistogramVec
	stageTotal   *CounterVec
	jobsTotal    *CounterVec
	jobLatency   *HistogramVec
	nonCatVerbs  *CounterVec
	queueDepth   *GaugeVec
	pgStats      *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current is nil until Init ran with metrics enabled. Every Metrics method
// accepts a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

// New builds an unregistered Metrics; Init publishes one as Current.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("loa_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"loa_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("loa_api_inflight_requests", "In-flight API requests."),
		stageLatency: NewHistogramVec(
			"loa_analysis_stage_duration_seconds",
			"Strand analysis stage duration in seconds by stage/status.",
			[]string{"stage", "status"},
			[]float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		stageTotal: NewCounterVec("loa_analysis_stage_total", "Strand analysis stages by stage/status.", []string{"stage", "status"}),
		jobsTotal:  NewCounterVec("loa_jobs_total", "Finished job runs by type/status.", []string{"job_type", "status"}),
		jobLatency: NewHistogramVec(
			"loa_job_duration_seconds",
			"Job handler duration in seconds by type/status.",
			[]string{"job_type", "status"},
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		),
		nonCatVerbs: NewCounterVec("loa_non_categorised_verbs_total", "Verbs found outside every category, by stage.", []string{"stage"}),
		queueDepth:  NewGaugeVec("loa_job_queue_depth", "Job queue depth by status.", []string{"status"}),
		pgStats:     NewGaugeVec("loa_db_pool_stats", "Database pool stats.", []string{"metric"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.stageLatency, m.stageTotal,
		m.jobsTotal, m.jobLatency,
		m.nonCatVerbs, m.queueDepth, m.pgStats,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveStage(stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageTotal.Inc(stage, status)
	m.stageLatency.Observe(dur.Seconds(), stage, status)
}

func (m *Metrics) ObserveJob(jobType, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.jobsTotal.Inc(jobType, status)
	m.jobLatency.Observe(dur.Seconds(), jobType, status)
}

func (m *Metrics) AddNonCatVerbs(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.nonCatVerbs.Add(float64(n), stage)
}

// StageCount is the number of observed stage runs for stage/status.
func (m *Metrics) StageCount(stage, status string) float64 {
	if m == nil {
		return 0
	}
	return m.stageTotal.Value(stage, status)
}

func (m *Metrics) JobCount(jobType, status string) float64 {
	if m == nil {
		return 0
	}
	return m.jobsTotal.Value(jobType, status)
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db pool handle unavailable", "error", err)
		}
		return
	}
	go tick(ctx, interval, func() {
		st := sqlDB.Stats()
		m.pgStats.Set(float64(st.OpenConnections), "open")
		m.pgStats.Set(float64(st.InUse), "in_use")
		m.pgStats.Set(float64(st.Idle), "idle")
		m.pgStats.Set(float64(st.WaitCount), "wait_count")
		m.pgStats.Set(st.WaitDuration.Seconds(), "wait_seconds")
	})
}

func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	statuses := []string{types.JobStatusQueued, types.JobStatusRunning, types.JobStatusSucceeded, types.JobStatusFailed}
	go tick(ctx, interval, func() {
		for _, s := range statuses {
			m.queueDepth.Set(0, s)
		}
		var rows []struct {
			Status string
			Count  int64
		}
		if err := db.WithContext(ctx).
			Model(&types.JobRun{}).
			Select("status, count(*) as count").
			Group("status").
			Scan(&rows).Error; err != nil {
			if log != nil {
				log.Warn("metrics: job queue depth query failed", "error", err)
			}
			return
		}
		for _, row := range rows {
			status := strings.TrimSpace(row.Status)
			if status == "" {
				status = "unknown"
			}
			m.queueDepth.Set(float64(row.Count), status)
		}
	})
}

func tick(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
