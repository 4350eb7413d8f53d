package collection

import "time"

// SiteResult — итог автосбора для одного сайта в рамках цикла
type SiteResult struct {
	Site     string `json:"site"`
	BuildID  string `json:"build_id,omitempty"`
	RunCount int    `json:"run_count,omitempty"`
	Error    string `json:"error,omitempty"`
}

// CycleSummary — итог одного цикла автосбора по всем сайтам
type CycleSummary struct {
	GeneratedAt    time.Time    `json:"generated_at"`
	SitesTotal     int          `json:"sites_total"`
	CollectedCount int          `json:"collected_count"`
	FailedCount    int          `json:"failed_count"`
	Results        []SiteResult `json:"results"`
}

// Snapshot — состояние runner для status endpoint
type Snapshot struct {
	StartedAt   time.Time     `json:"started_at"`
	Interval    time.Duration `json:"interval"`
	LastRunAt   time.Time     `json:"last_run_at"`
	LastError   string        `json:"last_error,omitempty"`
	LastSummary *CycleSummary `json:"last_summary,omitempty"`
}
