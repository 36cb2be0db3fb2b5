package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	QualityChurnColor    = color.New(color.FgRed, color.Bold) // QualityChurnColor represents standard danger.
	EngagementChurnColor = color.New(color.FgYellow)          // EngagementChurnColor represents caution from missing signal.
	HealthyColor         = color.New(color.FgGreen)           // HealthyColor represents no action needed.
	UnknownColor         = color.New(color.FgCyan)            // UnknownColor represents informational output.
)

// GetPlainLabel returns the plain text label of a risk class.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(class schema.RiskClass) string {
	return class.String()
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(class schema.RiskClass) string {
	text := GetPlainLabel(class)

	switch class {
	case schema.QualityChurn:
		return QualityChurnColor.Sprint(text)
	case schema.EngagementChurn:
		return EngagementChurnColor.Sprint(text)
	case schema.Healthy:
		return HealthyColor.Sprint(text)
	default:
		return UnknownColor.Sprint(text)
	}
}

// GetLabel picks the colored or plain label.
func GetLabel(class schema.RiskClass, useColors bool) string {
	if useColors {
		return GetColorLabel(class)
	}
	return GetPlainLabel(class)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetResultsDBFilePath returns the path to the SQLite DB file for sentiment results.
func GetResultsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".churnrisk_results.db"
	}
	return filepath.Join(homeDir, ".churnrisk_results.db")
}

// GetResultsCSVFilePath returns the path to the CSV file for sentiment results.
func GetResultsCSVFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".churnrisk_results.csv"
	}
	return filepath.Join(homeDir, ".churnrisk_results.csv")
}

// ResolveStoreLocation returns the file path or DSN a backend will use.
func ResolveStoreLocation(backend schema.DatabaseBackend, connStr string) string {
	if connStr != "" {
		return connStr
	}
	switch backend {
	case schema.SQLiteBackend:
		return GetResultsDBFilePath()
	case schema.CSVBackend:
		return GetResultsCSVFilePath()
	default:
		return ""
	}
}

// TruncateText truncates a product name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and one rune of content.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
