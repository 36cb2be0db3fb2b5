// Package tabular reads and writes the aggregate feature table as CSV.
//
// The table is the file handed from the features stage to the extract and report
// stages, so floats are written with full precision and read back unchanged.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FormatFloat renders a float with the shortest representation that reads back exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}

// FeatureFields returns the values of a row in schema.FeatureColumns order.
// Missing optional values are empty strings.
func FeatureFields(f schema.ProductFeatures) []string {
	return []string{
		f.ProductID,
		f.Brand,
		formatOptional(f.OverallRating),
		strconv.Itoa(f.ReviewCount),
		formatOptional(f.RatingStdDev),
		strconv.Itoa(f.RatingMin),
		strconv.Itoa(f.RatingMax),
		FormatFloat(f.StarProportions[0]),
		FormatFloat(f.StarProportions[1]),
		FormatFloat(f.StarProportions[2]),
		FormatFloat(f.StarProportions[3]),
		FormatFloat(f.StarProportions[4]),
		FormatFloat(f.NegativeRatio),
		FormatFloat(f.PositiveRatio),
		FormatFloat(f.ReviewVelocity),
	}
}

// WriteFeatures writes the header and one line per product.
func WriteFeatures(w io.Writer, features []schema.ProductFeatures) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(schema.Strings(schema.FeatureColumns)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, f := range features {
		if err := csvWriter.Write(FeatureFields(f)); err != nil {
			return fmt.Errorf("failed to write features of %s: %w", f.ProductID, err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// SaveFeaturesFile writes the feature table to path.
func SaveFeaturesFile(path string, features []schema.ProductFeatures) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create features file: %w", err)
	}
	if err := WriteFeatures(file, features); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// LoadFeaturesFile reads a feature table written by WriteFeatures.
func LoadFeaturesFile(path string) ([]schema.ProductFeatures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open features file: %w", err)
	}
	defer func() { _ = file.Close() }()

	features, err := ReadFeatures(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return features, nil
}

// ReadFeatures decodes a feature table. Columns are matched by header name, so extra
// columns are ignored; product_id and review_count are required. A product listed
// twice keeps its first row.
func ReadFeatures(r io.Reader) ([]schema.ProductFeatures, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("feature table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx := make(map[schema.ColumnKey]int, len(header))
	for i, h := range header {
		idx[schema.ColumnKey(strings.TrimSpace(h))] = i
	}
	for _, required := range []schema.ColumnKey{schema.ColProductID, schema.ColReviewCount} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("feature table has no %s column", required)
		}
	}

	var features []schema.ProductFeatures
	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		f, err := decodeFeatures(idx, record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, dup := seen[f.ProductID]; dup {
			continue
		}
		seen[f.ProductID] = struct{}{}
		features = append(features, f)
	}
	return features, nil
}

// rowDecoder collects the first conversion error of a row.
type rowDecoder struct {
	idx    map[schema.ColumnKey]int
	record []string
	err    error
}

func (d *rowDecoder) text(col schema.ColumnKey) string {
	if i, ok := d.idx[col]; ok && i < len(d.record) {
		return strings.TrimSpace(d.record[i])
	}
	return ""
}

func (d *rowDecoder) fail(col schema.ColumnKey, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("column %s: %w", col, err)
	}
}

func (d *rowDecoder) integer(col schema.ColumnKey) int {
	v := d.text(col)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Tables saved by spreadsheet tools may write counts as 12.0.
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			d.fail(col, err)
			return 0
		}
		n = int(f)
	}
	return n
}

func (d *rowDecoder) number(col schema.ColumnKey) float64 {
	v := d.text(col)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		d.fail(col, err)
	}
	return f
}

func (d *rowDecoder) optionalNumber(col schema.ColumnKey) *float64 {
	if d.text(col) == "" {
		return nil
	}
	v := d.number(col)
	return &v
}

func decodeFeatures(idx map[schema.ColumnKey]int, record []string) (schema.ProductFeatures, error) {
	d := &rowDecoder{idx: idx, record: record}
	f := schema.ProductFeatures{
		ProductID:     d.text(schema.ColProductID),
		Brand:         d.text(schema.ColBrand),
		OverallRating: d.optionalNumber(schema.ColOverallRating),
		ReviewCount:   d.integer(schema.ColReviewCount),
		RatingStdDev:  d.optionalNumber(schema.ColRatingStdDev),
		RatingMin:     d.integer(schema.ColRatingMin),
		RatingMax:     d.integer(schema.ColRatingMax),
		StarProportions: [5]float64{
			d.number(schema.ColStar1Ratio),
			d.number(schema.ColStar2Ratio),
			d.number(schema.ColStar3Ratio),
			d.number(schema.ColStar4Ratio),
			d.number(schema.ColStar5Ratio),
		},
		NegativeRatio:  d.number(schema.ColNegativeRatio),
		PositiveRatio:  d.number(schema.ColPositiveRatio),
		ReviewVelocity: d.number(schema.ColReviewVelocity),
	}
	if d.err != nil {
		return f, d.err
	}
	if f.ProductID == "" {
		return f, errors.New("empty product_id")
	}
	if f.ReviewCount < 0 {
		return f, fmt.Errorf("negative review_count %d", f.ReviewCount)
	}
	return f, nil
}
