package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{name: "ratio at 2", precision: 2, value: 0.4285714, expected: "0.43"},
		{name: "velocity at 1", precision: 1, value: 2.25, expected: "2.2"},
		{name: "whole", precision: 0, value: 4.6, expected: "5"},
		{name: "negative", precision: 2, value: -1.005, expected: "-1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, fmtOptional := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			v := tt.value
			assert.Equal(t, tt.expected, fmtOptional(&v))
			assert.Equal(t, "-", fmtOptional(nil), "a missing stddev or vendor rating")
		})
	}
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "yes", formatBool(true))
	assert.Equal(t, "no", formatBool(false))
}

func TestWriteKeyValues(t *testing.T) {
	var buf bytes.Buffer
	err := writeKeyValues(&buf, [][2]string{{"products", "3"}, {"note", "a, b"}})
	require.NoError(t, err)
	assert.Equal(t, "metric,value\nproducts,3\nnote,\"a, b\"\n", buf.String())
}

func TestWriteJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, schema.RiskAssessment{Class: schema.QualityChurn, Score: 6}))
	assert.Equal(t, "{\n  \"risk_class_code\": 1,\n  \"risk_score\": 6\n}\n", buf.String())
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	header := schema.Strings([]schema.ColumnKey{schema.ColProductID, schema.ColMainComplaint})
	tests := []struct {
		name     string
		rows     [][]string
		expected string
	}{
		{
			name:     "header only",
			expected: "product_id,main_complaint\n",
		},
		{
			name:     "plain rows",
			rows:     [][]string{{"p1", "runs small"}, {"p2", ""}},
			expected: "product_id,main_complaint\np1,runs small\np2,\n",
		},
		{
			name:     "quoted complaint",
			rows:     [][]string{{"p3", "thin, see-through \"fabric\""}},
			expected: "product_id,main_complaint\np3,\"thin, see-through \"\"fabric\"\"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, header, func(w *csv.Writer) error {
				return w.WriteAll(tt.rows)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteCSVWithHeaderPropagatesRowError(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"product_id"}, func(*csv.Writer) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWriteWithFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("stdout", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(io.Writer) error {
			called = true
			return nil
		}, "Wrote text")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(dir, "summary.json")
		err := writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, schema.IngestStats{Rows: 4, Kept: 3, DroppedDate: 1})
		}, "Wrote JSON")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var stats schema.IngestStats
		require.NoError(t, json.Unmarshal(content, &stats))
		assert.Equal(t, 1, stats.Dropped())
	})

	t.Run("writer error", func(t *testing.T) {
		err := writeWithFile(filepath.Join(dir, "broken.csv"), func(io.Writer) error {
			return assert.AnError
		}, "Wrote CSV")
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("missing directory", func(t *testing.T) {
		err := writeWithFile(filepath.Join(dir, "missing", "out.csv"), func(io.Writer) error {
			return nil
		}, "Wrote CSV")
		assert.Error(t, err)
	})
}
