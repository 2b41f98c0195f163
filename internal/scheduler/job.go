package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression (six fields, with seconds)
	// Examples: "0 0 18 * * 1-5" (weekdays at 6 PM)
	//           "@daily", "@every 1h"
	Schedule() string
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`

	// Tickers is set for jobs that implement TickerReporter
	Tickers *TickerCounts `json:"tickers,omitempty"`
}

// TickerCounts summarizes per-ticker outcomes of one valuation run
type TickerCounts struct {
	Total        int            `json:"total"`
	Valued       int            `json:"valued"`
	Failed       int            `json:"failed"`
	FailedByKind map[string]int `json:"failed_by_kind,omitempty"`
}

// TickerReporter is implemented by jobs that value a set of tickers.
// The scheduler copies LastCounts into the JobResult of every run.
type TickerReporter interface {
	LastCounts() TickerCounts
}

// maxHistory is the number of results kept per job
const maxHistory = 100

// JobHistory stores job execution history
type JobHistory struct {
	Results []JobResult
}

// AddResult adds a job result to history
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)

	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// GetLatestResults returns the latest N results
func (h *JobHistory) GetLatestResults(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}

	if n == 0 {
		return []JobResult{}
	}

	return h.Results[len(h.Results)-n:]
}

// GetFailedResults returns all failed results
func (h *JobHistory) GetFailedResults() []JobResult {
	failed := make([]JobResult, 0)
	for _, result := range h.Results {
		if !result.Success {
			failed = append(failed, result)
		}
	}
	return failed
}

// GetTickerFailureRate returns failed / total tickers across all runs that reported counts (0.0 - 1.0)
// 부분 실패한 run도 Success로 기록되므로 run 단위 성공률과 별도로 집계
func (h *JobHistory) GetTickerFailureRate() float64 {
	total, failed := 0, 0
	for _, result := range h.Results {
		if result.Tickers == nil {
			continue
		}
		total += result.Tickers.Total
		failed += result.Tickers.Failed
	}

	if total == 0 {
		return 0.0
	}
	return float64(failed) / float64(total)
}

// GetSuccessRate returns the success rate (0.0 - 1.0)
func (h *JobHistory) GetSuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}

	successCount := 0
	for _, result := range h.Results {
		if result.Success {
			successCount++
		}
	}

	return float64(successCount) / float64(len(h.Results))
}
