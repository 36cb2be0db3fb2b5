package persist

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// csvColumns is the header of the results file.
var csvColumns = schema.Strings(append(append([]schema.ColumnKey{schema.ColProductID}, schema.SentimentColumns...),
	schema.ColRiskClass, schema.ColRiskClassCode, schema.ColRiskScore, schema.ColRunID, schema.ColExtractedAt))

// CSVStore implements contract.SentimentStore as an append-only CSV file.
// Every row is written with one write call followed by an fsync, so a crash loses at
// most the row being written. Runs are not recorded.
type CSVStore struct {
	mu    sync.Mutex
	path  string
	file  *os.File
	known schema.CheckpointSet
}

var _ contract.SentimentStore = &CSVStore{} // Compile-time check

// NewCSVStore opens (or creates) the results file. A new file gets the header line.
// A trailing row cut short by a crash is truncated away: it was never acknowledged.
func NewCSVStore(path string) (*CSVStore, error) {
	if path == "" {
		return nil, errors.New("csv store path cannot be empty")
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file %q: %w", path, err)
	}

	store := &CSVStore{path: path, file: file}
	if err := store.prepare(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return store, nil
}

func (s *CSVStore) prepare() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read results file %q: %w", s.path, err)
	}

	if n := len(data); n > 0 && data[n-1] != '\n' {
		keep := bytes.LastIndexByte(data, '\n') + 1
		if err := s.file.Truncate(int64(keep)); err != nil {
			return fmt.Errorf("failed to truncate partial row of %q: %w", s.path, err)
		}
		data = data[:keep]
	}

	if len(data) == 0 {
		line, err := encodeCSVLine(csvColumns)
		if err != nil {
			return err
		}
		return s.writeDurably(line)
	}

	header, err := s.readHeader()
	if err != nil {
		return err
	}
	if _, ok := header[string(schema.ColProductID)]; !ok {
		return fmt.Errorf("results file %q has no %s column", s.path, schema.ColProductID)
	}
	return nil
}

// writeDurably issues a single write and syncs the file.
func (s *CSVStore) writeDurably(data []byte) error {
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("failed to write results file %q: %w", s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync results file %q: %w", s.path, err)
	}
	return nil
}

func encodeCSVLine(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *CSVStore) openReader() (*os.File, *csv.Reader, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open results file %q: %w", s.path, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return f, r, nil
}

func (s *CSVStore) readHeader() (map[string]int, error) {
	f, r, err := s.openReader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %q: %w", s.path, err)
	}
	return indexHeader(header), nil
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

// load reads every row of the file. Rows with a different number of fields than
// the header are ignored.
func (s *CSVStore) load() ([]schema.SentimentRecord, error) {
	f, r, err := s.openReader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %q: %w", s.path, err)
	}
	idx := indexHeader(header)

	var records []schema.SentimentRecord
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", s.path, err)
		}
		if len(fields) != len(header) {
			continue
		}
		line, _ := r.FieldPos(0)
		record, err := decodeCSVRecord(idx, fields)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.path, line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeCSVRecord(idx map[string]int, fields []string) (schema.SentimentRecord, error) {
	get := func(col schema.ColumnKey) string {
		if i, ok := idx[string(col)]; ok {
			return fields[i]
		}
		return ""
	}
	var firstErr error
	parseInt := func(col schema.ColumnKey, def int) int {
		v := get(col)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("column %s: %w", col, err)
		}
		return n
	}
	parseBool := func(col schema.ColumnKey) bool {
		v := get(col)
		if v == "" {
			return false
		}
		b, err := strconv.ParseBool(v)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("column %s: %w", col, err)
		}
		return b
	}

	record := schema.SentimentRecord{
		ProductID: get(schema.ColProductID),
		SentimentSummary: schema.SentimentSummary{
			FitmentProblem:       parseBool(schema.ColFitmentProblem),
			FitmentSeverity:      parseInt(schema.ColFitmentSeverity, 0),
			QualitySentiment:     parseInt(schema.ColQualitySentiment, schema.DefaultQualitySentiment),
			DeliveryIssue:        parseBool(schema.ColDeliveryIssue),
			ColorMismatch:        parseBool(schema.ColColorMismatch),
			FabricQualityIssue:   parseBool(schema.ColFabricQualityIssue),
			PriceValuePerception: parseInt(schema.ColPriceValuePerception, 0),
			MainComplaint:        get(schema.ColMainComplaint),
		},
		SampleSize: parseInt(schema.ColSampleSize, 0),
		RiskScore:  parseInt(schema.ColRiskScore, 0),
		RunID:      get(schema.ColRunID),
	}

	if code := get(schema.ColRiskClassCode); code != "" {
		record.RiskClass = schema.RiskClass(parseInt(schema.ColRiskClassCode, 0))
	} else if label := get(schema.ColRiskClass); label != "" {
		class, err := schema.ParseRiskClass(label)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		record.RiskClass = class
	}

	if at := get(schema.ColExtractedAt); at != "" {
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("column %s: %w", schema.ColExtractedAt, err)
		}
		record.ExtractedAt = t
	}

	return record, firstErr
}

// lineBreaks keeps every row on one physical line, so the last newline of the file
// is always a row boundary.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func encodeCSVRecord(r schema.SentimentRecord) []string {
	return []string{
		r.ProductID,
		strconv.FormatBool(r.FitmentProblem),
		strconv.Itoa(r.FitmentSeverity),
		strconv.Itoa(r.QualitySentiment),
		strconv.FormatBool(r.DeliveryIssue),
		strconv.FormatBool(r.ColorMismatch),
		strconv.FormatBool(r.FabricQualityIssue),
		strconv.Itoa(r.PriceValuePerception),
		lineBreaks.Replace(r.MainComplaint),
		strconv.Itoa(r.SampleSize),
		r.RiskClass.String(),
		strconv.Itoa(int(r.RiskClass)),
		strconv.Itoa(r.RiskScore),
		r.RunID,
		r.ExtractedAt.UTC().Format(time.RFC3339Nano),
	}
}

// checkpoint returns the cached checkpoint set, reading the file on first use.
func (s *CSVStore) checkpoint() (schema.CheckpointSet, error) {
	if s.known != nil {
		return s.known, nil
	}
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	s.known = schema.NewCheckpointSet()
	for _, r := range records {
		s.known.Add(r.ProductID)
	}
	return s.known, nil
}

// ProcessedProducts implements contract.SentimentStore. It always rereads the file.
func (s *CSVStore) ProcessedProducts(_ context.Context) (schema.CheckpointSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.known = nil
	known, err := s.checkpoint()
	if err != nil {
		return nil, err
	}
	out := make(schema.CheckpointSet, known.Len())
	for id := range known {
		out.Add(id)
	}
	return out, nil
}

// Append implements contract.SentimentStore.
func (s *CSVStore) Append(ctx context.Context, record schema.SentimentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errors.New("csv store is closed")
	}
	known, err := s.checkpoint()
	if err != nil {
		return err
	}
	if known.Has(record.ProductID) {
		return fmt.Errorf("%w: %s", contract.ErrAlreadyPersisted, record.ProductID)
	}

	line, err := encodeCSVLine(encodeCSVRecord(record))
	if err != nil {
		return fmt.Errorf("failed to encode sentiment for %s: %w", record.ProductID, err)
	}
	if err := s.writeDurably(line); err != nil {
		return err
	}
	known.Add(record.ProductID)
	return nil
}

// LoadAll implements contract.SentimentStore.
func (s *CSVStore) LoadAll(_ context.Context) ([]schema.SentimentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// BeginRun implements contract.SentimentStore. The CSV backend keeps no run table.
func (s *CSVStore) BeginRun(_ context.Context, _ schema.ExtractionRun) error {
	return nil
}

// EndRun implements contract.SentimentStore.
func (s *CSVStore) EndRun(_ context.Context, _ schema.ExtractionRun) error {
	return nil
}

// GetStatus implements contract.SentimentStore. Runs are counted from the distinct run ids.
func (s *CSVStore) GetStatus(_ context.Context) (schema.StoreStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := schema.StoreStatus{
		Backend:     string(schema.CSVBackend),
		Location:    s.path,
		Connected:   s.file != nil,
		ClassCounts: map[string]int{},
		TableSizes:  map[string]int64{},
	}

	records, err := s.load()
	if err != nil {
		return status, err
	}

	runs := make(map[string]struct{})
	for _, r := range records {
		status.ClassCounts[r.RiskClass.String()]++
		runs[r.RunID] = struct{}{}
		if status.LastExtraction.IsZero() || r.ExtractedAt.After(status.LastExtraction) {
			status.LastExtraction = r.ExtractedAt
		}
		if status.OldestExtraction.IsZero() || r.ExtractedAt.Before(status.OldestExtraction) {
			status.OldestExtraction = r.ExtractedAt
		}
	}
	status.TotalResults = len(records)
	status.TotalRuns = len(runs)
	status.TableSizes[sentimentResultsTable] = int64(len(records))

	if info, err := os.Stat(s.path); err == nil {
		status.TableSizes["file_bytes"] = info.Size()
	}
	return status, nil
}

// Close implements contract.SentimentStore.
func (s *CSVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
