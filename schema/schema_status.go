package schema

import "time"

// StoreStatus represents the status of the sentiment store.
type StoreStatus struct {
	Backend          string           `json:"backend"`
	Location         string           `json:"location"`
	Connected        bool             `json:"connected"`
	TotalResults     int              `json:"total_results"`
	TotalRuns        int              `json:"total_runs"`
	LastExtraction   time.Time        `json:"last_extraction"`
	OldestExtraction time.Time        `json:"oldest_extraction"`
	ClassCounts      map[string]int   `json:"class_counts"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}

// ExtractionRun is the metadata of one batch runner invocation.
type ExtractionRun struct {
	RunID           string     `json:"run_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Model           string     `json:"model"`
	TotalProducts   int        `json:"total_products"`
	Processed       int        `json:"processed"`
	Skipped         int        `json:"skipped"`
	AlreadyComplete int        `json:"already_complete"`
}

// ExtractionUsage accumulates tokens consumed by the extractor.
type ExtractionUsage struct {
	Calls        int   `json:"calls"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// TotalTokens returns input plus output tokens.
func (u ExtractionUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

// Add merges other into u.
func (u *ExtractionUsage) Add(other ExtractionUsage) {
	u.Calls += other.Calls
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// RunSummary is reported at the end of a batch run.
type RunSummary struct {
	RunID             string          `json:"run_id"`
	TotalProducts     int             `json:"total_products"`
	AlreadyComplete   int             `json:"already_complete"`
	Pending           int             `json:"pending"`
	Deferred          int             `json:"deferred"`
	Processed         int             `json:"processed"`
	SkippedNoReviews  int             `json:"skipped_no_reviews"`
	ParseFailures     int             `json:"parse_failures"`
	TransportFailures int             `json:"transport_failures"`
	Usage             ExtractionUsage `json:"usage"`
	StartTime         time.Time       `json:"start_time"`
	EndTime           time.Time       `json:"end_time"`
	Interrupted       bool            `json:"interrupted"`
}

// Skipped returns the number of products attempted but not persisted.
func (s RunSummary) Skipped() int {
	return s.SkippedNoReviews + s.ParseFailures + s.TransportFailures
}

// Duration returns the wall time of the run.
func (s RunSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
