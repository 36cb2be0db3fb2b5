package persist

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/parquet"
)

// ExportResult lists the files written by Export.
type ExportResult struct {
	ResultsFile string
	Results     int
	RunsFile    string
	Runs        int
}

// Export writes the persisted sentiment rows, and the run metadata when the store keeps
// it, to Parquet files named after outputFile.
func Export(ctx context.Context, store contract.SentimentStore, outputFile string, out io.Writer) (ExportResult, error) {
	var result ExportResult
	if outputFile == "" {
		return result, errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalResults == 0 {
		return result, errors.New("no sentiment data found to export")
	}

	_, _ = fmt.Fprintf(out, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Total sentiment rows: %d\n", status.TotalResults)

	records, err := store.LoadAll(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to retrieve sentiment rows: %w", err)
	}
	result.ResultsFile = outputFile + ".sentiment_results.parquet"
	if err := parquet.WriteSentimentResultsParquet(parquet.ConvertSentimentRecords(records), result.ResultsFile); err != nil {
		return result, fmt.Errorf("failed to write sentiment rows: %w", err)
	}
	result.Results = len(records)
	_, _ = fmt.Fprintf(out, "Exported %d sentiment rows to: %s\n", result.Results, result.ResultsFile)

	if lister, ok := store.(contract.RunLister); ok {
		runs, err := lister.ListRuns(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to retrieve extraction runs: %w", err)
		}
		result.RunsFile = outputFile + ".extraction_runs.parquet"
		if err := parquet.WriteExtractionRunsParquet(parquet.ConvertExtractionRuns(runs), result.RunsFile); err != nil {
			return result, fmt.Errorf("failed to write extraction runs: %w", err)
		}
		result.Runs = len(runs)
		_, _ = fmt.Fprintf(out, "Exported %d extraction runs to: %s\n", result.Runs, result.RunsFile)
	}

	_, _ = fmt.Fprintln(out, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(out, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(out, "  - DuckDB")
	_, _ = fmt.Fprintln(out, "  - Any other Parquet-compatible tool")

	return result, nil
}
