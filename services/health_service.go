package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"schoolrecords_go/config"
	"schoolrecords_go/database"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusCritical = "critical"

	probeTimeout = 1500 * time.Millisecond
)

// HealthService reports readiness of the API and its backing services.
type HealthService struct {
	serviceName string
	version     string
	startTime   time.Time
}

// HealthReport is the JSON body of the health endpoint.
type HealthReport struct {
	Status      string        `json:"status"`
	Service     string        `json:"service"`
	Version     string        `json:"version"`
	Environment string        `json:"environment"`
	Time        time.Time     `json:"time"`
	Uptime      string        `json:"uptime"`
	Checks      []CheckResult `json:"checks"`
	Runtime     RuntimeInfo   `json:"runtime"`
}

// CheckResult is the outcome of probing one backing service.
type CheckResult struct {
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	LatencyMs int64          `json:"latency_ms"`
	Error     string         `json:"error,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// RuntimeInfo carries process level diagnostics.
type RuntimeInfo struct {
	GoVersion      string `json:"go_version"`
	Goroutines     int    `json:"goroutines"`
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	SysBytes       uint64 `json:"sys_bytes"`
	NumGC          uint32 `json:"num_gc"`
	LogArchiveDays int    `json:"log_archive_days"`
	SkipMigrate    bool   `json:"skip_migrate"`
}

func NewHealthService(serviceName, version string) *HealthService {
	return &HealthService{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
	}
}

// GetHealthReport probes the database and redis and assembles the report.
func (s *HealthService) GetHealthReport() HealthReport {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	report := HealthReport{
		Status:      statusOK,
		Service:     s.serviceName,
		Version:     s.version,
		Environment: environmentName(),
		Time:        time.Now().UTC(),
		Uptime:      formatUptime(time.Since(s.startTime)),
	}

	checks := []CheckResult{
		s.probeDatabase(ctx),
		s.probeRedis(ctx),
	}
	// a redis outage only degrades: the activity log falls back to direct
	// DB writes and logout blacklisting is skipped
	for _, check := range checks {
		report.Status = worseOf(report.Status, check.Status)
	}

	report.Checks = checks
	report.Runtime = collectRuntimeInfo()
	return report
}

// HTTPStatusForOverall maps the report status to an HTTP status code.
func (s *HealthService) HTTPStatusForOverall(status string) int {
	if status == statusCritical {
		return 503
	}
	return 200
}

func (s *HealthService) probeDatabase(ctx context.Context) CheckResult {
	check := CheckResult{Name: "mysql", Status: statusCritical}

	if database.DB == nil {
		check.Error = "database not connected"
		return check
	}
	sqlDB, err := database.DB.DB()
	if err != nil {
		check.Error = err.Error()
		return check
	}

	start := time.Now()
	err = sqlDB.PingContext(ctx)
	check.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		check.Error = err.Error()
		return check
	}

	stats := sqlDB.Stats()
	check.Status = statusOK
	check.Details = map[string]any{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}
	return check
}

func (s *HealthService) probeRedis(ctx context.Context) CheckResult {
	check := CheckResult{Name: "redis", Status: statusDegraded}

	client := database.GetRedisClient()
	if client == nil {
		check.Error = "redis not connected"
		return check
	}

	start := time.Now()
	err := client.Ping(ctx).Err()
	check.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		check.Error = err.Error()
		return check
	}

	check.Status = statusOK
	check.Details = map[string]any{"address": client.Options().Addr}
	return check
}

func collectRuntimeInfo() RuntimeInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	info := RuntimeInfo{
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		SysBytes:       mem.Sys,
		NumGC:          mem.NumGC,
	}
	if config.AppConfig != nil {
		info.LogArchiveDays = config.AppConfig.LogArchiveDays
		info.SkipMigrate = config.AppConfig.SkipMigrate
	}
	return info
}

func environmentName() string {
	if config.AppConfig == nil {
		return "unknown"
	}
	if env := strings.TrimSpace(config.AppConfig.AppEnv); env != "" {
		return env
	}
	return "unknown"
}

func worseOf(a, b string) string {
	rank := map[string]int{statusOK: 0, statusDegraded: 1, statusCritical: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return d.String()
	}
	days := d / (24 * time.Hour)
	rest := d % (24 * time.Hour)
	if days > 0 {
		return fmt.Sprintf("%dd%s", days, rest.Round(time.Minute))
	}
	return rest.Round(time.Second).String()
}
