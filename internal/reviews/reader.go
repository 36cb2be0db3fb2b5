package reviews

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"golang.org/x/text/unicode/norm"
)

// utf8BOM is written by spreadsheet tools and the scraper's utf-8-sig encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type column int

const (
	colProduct column = iota
	colBrand
	colVendorRating
	colCorrectedText
	colText
	colDate
	colStar
	colHeight
	colWeight
	colSize
	numColumns
)

// headerAliases lists the accepted header names per column, lower-cased and NFC-normalized.
var headerAliases = map[column][]string{
	colProduct:       {"ürün", "product", "product_id"},
	colBrand:         {"marka", "brand"},
	colVendorRating:  {"genel puan", "overall_rating", "vendor_rating"},
	colCorrectedText: {"duzeltilmis_yorum", "düzeltilmiş_yorum", "corrected_text"},
	colText:          {"yorum", "text", "review"},
	colDate:          {"tarih", "date", "review_date"},
	colStar:          {"puan", "star_rating", "star"},
	colHeight:        {"boy", "height"},
	colWeight:        {"kilo", "weight"},
	colSize:          {"beden", "size"},
}

// columnIndex holds the position of each column in a header, -1 when absent.
type columnIndex [numColumns]int

func normalizeHeader(h string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(h)))
}

func resolveHeader(header []string) (columnIndex, error) {
	var idx columnIndex
	for i := range idx {
		idx[i] = -1
	}
	lookup := make(map[string]column)
	for col, names := range headerAliases {
		for _, name := range names {
			lookup[name] = col
		}
	}
	for i, h := range header {
		col, ok := lookup[normalizeHeader(h)]
		if ok && idx[col] == -1 {
			idx[col] = i
		}
	}

	var missing []string
	if idx[colProduct] == -1 {
		missing = append(missing, "product")
	}
	if idx[colDate] == -1 {
		missing = append(missing, "date")
	}
	if idx[colStar] == -1 {
		missing = append(missing, "star rating")
	}
	if idx[colText] == -1 && idx[colCorrectedText] == -1 {
		missing = append(missing, "review text")
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("review file is missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func (idx columnIndex) get(record []string, col column) string {
	i := idx[col]
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// text prefers the spelling-corrected column when the file has one.
func (idx columnIndex) text(record []string) string {
	if idx[colCorrectedText] != -1 {
		return idx.get(record, colCorrectedText)
	}
	return idx.get(record, colText)
}

// ParseVendorRating parses a vendor rating that may use a decimal comma ("4,5").
// An empty cell is reported as missing.
func ParseVendorRating(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid vendor rating %q", s)
	}
	return &v, nil
}

// ParseStarRating parses a star rating in 1..5, written either as "5" or "5.0".
func ParseStarRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid star rating %q", s)
	}
	if v != math.Trunc(v) || v < 1 || v > 5 {
		return 0, fmt.Errorf("star rating %q out of range 1..5", s)
	}
	return int(v), nil
}

// ReadReviews reads review rows from CSV. Rows without a product, with an unparseable
// date or without a valid star rating are dropped and counted in the returned stats.
// Missing required columns or malformed CSV are returned as errors.
func ReadReviews(r io.Reader) ([]schema.Review, schema.IngestStats, error) {
	var stats schema.IngestStats

	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, fmt.Errorf("review file is empty")
	}
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read review header: %w", err)
	}
	idx, err := resolveHeader(header)
	if err != nil {
		return nil, stats, err
	}

	var out []schema.Review
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read review row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		productID := idx.get(record, colProduct)
		if productID == "" {
			stats.DroppedProduct++
			continue
		}
		date, err := ParseReviewDate(idx.get(record, colDate))
		if err != nil {
			stats.DroppedDate++
			continue
		}
		star, err := ParseStarRating(idx.get(record, colStar))
		if err != nil {
			stats.DroppedStar++
			continue
		}
		// A malformed vendor rating is treated as missing; it is not a required field.
		vendor, _ := ParseVendorRating(idx.get(record, colVendorRating))

		out = append(out, schema.Review{
			ProductID:    productID,
			Brand:        idx.get(record, colBrand),
			VendorRating: vendor,
			Text:         idx.text(record),
			StarRating:   star,
			Date:         date,
			Attributes: schema.ReviewerAttributes{
				Height: idx.get(record, colHeight),
				Weight: idx.get(record, colWeight),
				Size:   idx.get(record, colSize),
			},
		})
		stats.Kept++
	}
	return out, stats, nil
}
