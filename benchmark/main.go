// Package main times the churnrisk CLI on synthetic review exports of growing size.
// Each command runs several times against every export; the first successful run is
// reported as cold and the rest are averaged as warm. Results go to a CSV file.
//
// Prerequisites:
// - churnrisk binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated exports and stores (default: a temp dir)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the timings of one command on one export.
type BenchmarkResult struct {
	Dataset  string
	Command  string
	Backend  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Products []int // number of products per generated export
	Reviews  int   // reviews per product
	Backends []string
}

// benchmarkCase is one CLI invocation to time.
type benchmarkCase struct {
	command string
	args    func(reviews, features string) []string
}

var cases = []benchmarkCase{
	{"features", func(reviews, features string) []string {
		return []string{"features", "--reviews", reviews, "--output", "csv", "--output-file", features}
	}},
	{"report", func(reviews, _ string) []string {
		return []string{"report", "--reviews", reviews, "--output", "csv", "--output-file", os.DevNull}
	}},
	{"report-features", func(_, features string) []string {
		return []string{"report", "--features", features, "--output", "csv", "--output-file", os.DevNull}
	}},
}

func main() {
	workDir := ""
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "churnrisk-benchmark-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:  workDir,
		Timeout:  5 * time.Minute,
		Runs:     4,
		Products: []int{100, 1000, 10000},
		Reviews:  20,
		Backends: []string{"sqlite", "csv"},
	}

	if _, err := exec.LookPath("churnrisk"); err != nil {
		fmt.Printf("Prerequisites check failed: churnrisk binary not found in PATH\n")
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// generateReviews writes a storefront export with the given shape and returns its path.
func generateReviews(dir string, products, reviewsPerProduct int) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("reviews_%d.csv", products))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Ürün", "Marka", "Genel Puan", "Yorum", "Tarih", "Puan"}); err != nil {
		return "", err
	}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for p := range products {
		for r := range reviewsPerProduct {
			date := start.AddDate(0, 0, (p+r)%365).Format("2006-01-02")
			star := (p*7+r*3)%5 + 1
			record := []string{
				fmt.Sprintf("product-%05d", p),
				fmt.Sprintf("brand-%d", p%25),
				fmt.Sprintf("%d,%d", 3+p%2, p%10),
				fmt.Sprintf("review %d of product %d", r, p),
				date,
				fmt.Sprintf("%d", star),
			}
			if err := writer.Write(record); err != nil {
				return "", err
			}
		}
	}
	writer.Flush()
	return path, writer.Error()
}

// runBenchmarks executes every case on every generated export and backend.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d exports, %d backends, %v timeout, %d runs\n",
		len(config.Products), len(config.Backends), config.Timeout, config.Runs)

	for _, products := range config.Products {
		dataset := fmt.Sprintf("%dx%d", products, config.Reviews)
		reviews, err := generateReviews(config.WorkDir, products, config.Reviews)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", dataset, err)
		}
		features := filepath.Join(config.WorkDir, fmt.Sprintf("features_%d.csv", products))

		for _, backend := range config.Backends {
			store := filepath.Join(config.WorkDir, fmt.Sprintf("store_%d.%s", products, backend))
			env := []string{"CHURNRISK_STORE_BACKEND=" + backend, "CHURNRISK_STORE_CONNECT=" + store}
			fmt.Printf("Benchmarking %s on %s\n", dataset, backend)

			for _, c := range cases {
				cold, warm := runBenchmark(config, env, c.args(reviews, features))
				fmt.Printf("  %-16s cold: %s, warm: %s\n", c.command, cold, warm)
				results = append(results, BenchmarkResult{
					Dataset:  dataset,
					Command:  c.command,
					Backend:  backend,
					ColdTime: cold,
					WarmTime: warm,
				})
			}
		}
	}

	return results, nil
}

// runBenchmark runs one command config.Runs times and returns the cold time and the warm average.
func runBenchmark(config BenchmarkConfig, env, args []string) (coldTime, warmAvg string) {
	var times []float64
	for range config.Runs {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		cmd := exec.CommandContext(ctx, "churnrisk", args...)
		cmd.Env = append(os.Environ(), env...)

		start := time.Now()
		err := cmd.Run()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil {
			times = append(times, elapsed)
		}
	}

	coldTime, warmAvg = "FAILED", "FAILED"
	if len(times) > 0 {
		coldTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}
	return coldTime, warmAvg
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("churnrisk_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "backend", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.Backend, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the results grouped by command.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, c := range cases {
		fmt.Printf("%s:\n", c.command)
		for _, result := range results {
			if result.Command == c.command {
				fmt.Printf("  %-10s %-7s cold: %s, warm: %s\n", result.Dataset, result.Backend, result.ColdTime, result.WarmTime)
			}
		}
	}
}
