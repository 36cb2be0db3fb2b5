package persist

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSVStore(t *testing.T) (*CSVStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.csv")
	store, err := NewCSVStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestCSVStoreWritesHeader(t *testing.T) {
	_, path := newCSVStore(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(csvColumns, ",")+"\n", string(data))
}

func TestCSVStoreAppendAndReopen(t *testing.T) {
	ctx := context.Background()
	store, path := newCSVStore(t)

	first := record("p1", 0)
	first.MainComplaint = "Kalıp dar,\nrenk farklı"
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, record("p2", time.Second)))
	require.NoError(t, store.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"), 3, "one physical line per row")

	reopened, err := NewCSVStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	done, err := reopened.ProcessedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema.NewCheckpointSet("p1", "p2"), done)

	records, err := reopened.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Kalıp dar, renk farklı", records[0].MainComplaint)
	assert.True(t, first.ExtractedAt.Equal(records[0].ExtractedAt))
	assert.Equal(t, schema.QualityChurn, records[0].RiskClass)
	assert.Equal(t, 8, records[0].FitmentSeverity)
	assert.True(t, records[0].ColorMismatch)
	assert.Equal(t, 42, records[0].SampleSize)
	assert.Equal(t, "run-1", records[0].RunID)
}

func TestCSVStoreRefusesDuplicates(t *testing.T) {
	ctx := context.Background()
	store, path := newCSVStore(t)

	require.NoError(t, store.Append(ctx, record("p1", 0)))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = store.Append(ctx, record("p1", time.Minute))
	assert.ErrorIs(t, err, contract.ErrAlreadyPersisted)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCSVStoreTruncatesTornRow(t *testing.T) {
	ctx := context.Background()
	store, path := newCSVStore(t)
	require.NoError(t, store.Append(ctx, record("p1", 0)))
	require.NoError(t, store.Close())

	// Simulate a crash in the middle of a write.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`p2,true,7,"unterminated`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := NewCSVStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	done, err := reopened.ProcessedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema.NewCheckpointSet("p1"), done)

	require.NoError(t, reopened.Append(ctx, record("p2", time.Second)))
	records, err := reopened.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "p2", records[1].ProductID)
}

func TestCSVStoreSkipsShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	content := strings.Join(csvColumns, ",") + "\n" + "p9,true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := NewCSVStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVStoreRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644))

	_, err := NewCSVStore(path)
	assert.Error(t, err)
}

func TestCSVStoreLegacyLabelOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.csv")
	content := "product_id,fitment_problem,risk_class,extracted_at\n" +
		"p1,true,EngagementChurn,2025-03-01T12:00:00Z\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := NewCSVStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, schema.EngagementChurn, records[0].RiskClass)
	assert.Equal(t, schema.DefaultQualitySentiment, records[0].QualitySentiment)
	assert.True(t, records[0].FitmentProblem)
}

func TestCSVStoreStatus(t *testing.T) {
	ctx := context.Background()
	store, path := newCSVStore(t)

	other := record("p2", time.Hour)
	other.RunID = "run-2"
	other.RiskClass = schema.Healthy
	require.NoError(t, store.Append(ctx, record("p1", 0)))
	require.NoError(t, store.Append(ctx, other))

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "csv", status.Backend)
	assert.Equal(t, path, status.Location)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalResults)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, map[string]int{"QualityChurn": 1, "Healthy": 1}, status.ClassCounts)
	assert.True(t, baseTime.Equal(status.OldestExtraction))
	assert.True(t, baseTime.Add(time.Hour).Equal(status.LastExtraction))
	assert.Positive(t, status.TableSizes["file_bytes"])
}

func TestCSVStoreClosed(t *testing.T) {
	store, _ := newCSVStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	err := store.Append(context.Background(), record("p1", 0))
	assert.Error(t, err)
}

func TestCSVStoreAppendCancelled(t *testing.T) {
	store, _ := newCSVStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Append(ctx, record("p1", 0))
	assert.ErrorIs(t, err, context.Canceled)
}
