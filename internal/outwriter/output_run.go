package outwriter

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// WriteRunSummary outputs the counts of a batch run. Parquet mode falls back to the
// text table on stdout since a summary is not a table worth a columnar file.
func WriteRunSummary(summary schema.RunSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeKeyValues(w, runSummaryPairs(summary))
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile("", func(w io.Writer) error {
			return writeRunSummaryTable(w, summary)
		}, "")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunSummaryTable(w, summary)
		}, "Wrote table")
	}
}

func runSummaryPairs(s schema.RunSummary) [][2]string {
	return [][2]string{
		{"run_id", s.RunID},
		{"total_products", strconv.Itoa(s.TotalProducts)},
		{"already_complete", strconv.Itoa(s.AlreadyComplete)},
		{"pending", strconv.Itoa(s.Pending)},
		{"deferred", strconv.Itoa(s.Deferred)},
		{"processed", strconv.Itoa(s.Processed)},
		{"skipped_no_reviews", strconv.Itoa(s.SkippedNoReviews)},
		{"parse_failures", strconv.Itoa(s.ParseFailures)},
		{"transport_failures", strconv.Itoa(s.TransportFailures)},
		{"llm_calls", strconv.Itoa(s.Usage.Calls)},
		{"input_tokens", strconv.FormatInt(s.Usage.InputTokens, 10)},
		{"output_tokens", strconv.FormatInt(s.Usage.OutputTokens, 10)},
		{"duration", s.Duration().String()},
		{"interrupted", strconv.FormatBool(s.Interrupted)},
	}
}

func writeRunSummaryTable(w io.Writer, s schema.RunSummary) error {
	table := newTable(w, "Metric", "Value")
	data := [][]string{
		{"Products", strconv.Itoa(s.TotalProducts)},
		{"Already complete", strconv.Itoa(s.AlreadyComplete)},
		{"Processed now", strconv.Itoa(s.Processed)},
		{"Skipped (no usable reviews)", strconv.Itoa(s.SkippedNoReviews)},
		{"Parse failures", strconv.Itoa(s.ParseFailures)},
		{"Transport failures", strconv.Itoa(s.TransportFailures)},
		{"Deferred (--max-products)", strconv.Itoa(s.Deferred)},
		{"LLM calls", strconv.Itoa(s.Usage.Calls)},
		{"Tokens (in/out)", fmt.Sprintf("%d/%d", s.Usage.InputTokens, s.Usage.OutputTokens)},
	}
	if err := renderTable(table, data); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Run %s finished in %v\n", s.RunID, s.Duration()); err != nil {
		return err
	}
	if s.Interrupted {
		if _, err := fmt.Fprintln(w, "⚠️  Run was interrupted. Rerun the same command to resume."); err != nil {
			return err
		}
	}
	if left := s.Skipped() + s.Deferred; left > 0 {
		if _, err := fmt.Fprintf(w, "%d products remain eligible for the next run\n", left); err != nil {
			return err
		}
	}
	return nil
}

// WriteStoreStatus outputs the status of the sentiment store.
func WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeKeyValues(w, storeStatusPairs(status))
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile("", func(w io.Writer) error {
			return writeStoreStatusText(w, status)
		}, "")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStoreStatusText(w, status)
		}, "Wrote text")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatTimestamp renders t, or nothing when it is unset.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeFormat)
}

func storeStatusPairs(s schema.StoreStatus) [][2]string {
	pairs := [][2]string{
		{"backend", s.Backend},
		{"location", s.Location},
		{"connected", strconv.FormatBool(s.Connected)},
		{"total_results", strconv.Itoa(s.TotalResults)},
		{"total_runs", strconv.Itoa(s.TotalRuns)},
		{"last_extraction", formatTimestamp(s.LastExtraction)},
		{"oldest_extraction", formatTimestamp(s.OldestExtraction)},
	}
	for _, class := range sortedKeys(s.ClassCounts) {
		pairs = append(pairs, [2]string{"class_" + class, strconv.Itoa(s.ClassCounts[class])})
	}
	for _, table := range sortedKeys(s.TableSizes) {
		pairs = append(pairs, [2]string{"size_" + table, strconv.FormatInt(s.TableSizes[table], 10)})
	}
	return pairs
}

func writeStoreStatusText(w io.Writer, s schema.StoreStatus) error {
	lines := []string{
		fmt.Sprintf("Store Backend: %s", s.Backend),
		fmt.Sprintf("Location: %s", s.Location),
		fmt.Sprintf("Connected: %t", s.Connected),
	}
	if s.Connected {
		lines = append(lines,
			fmt.Sprintf("Total Results: %d", s.TotalResults),
			fmt.Sprintf("Total Runs: %d", s.TotalRuns))
		if s.TotalResults > 0 {
			lines = append(lines,
				fmt.Sprintf("Last Extraction: %s", formatTimestamp(s.LastExtraction)),
				fmt.Sprintf("Oldest Extraction: %s", formatTimestamp(s.OldestExtraction)))
		}
		if len(s.ClassCounts) > 0 {
			lines = append(lines, "Risk Classes:")
			for _, class := range sortedKeys(s.ClassCounts) {
				lines = append(lines, fmt.Sprintf("  %s: %d", class, s.ClassCounts[class]))
			}
		}
		if len(s.TableSizes) > 0 {
			lines = append(lines, "Table Sizes:")
			for _, table := range sortedKeys(s.TableSizes) {
				lines = append(lines, fmt.Sprintf("  %s: %d", table, s.TableSizes[table]))
			}
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
