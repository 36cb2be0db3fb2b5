package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// Classification is one ad-hoc classifier input with its result.
type Classification struct {
	ProductID   string                  `json:"product_id,omitempty"`
	ReviewCount int                     `json:"review_count"`
	Sentiment   schema.SentimentSummary `json:"sentiment"`
	Risk        schema.RiskAssessment   `json:"risk"`
}

// WriteClassification outputs the result of classifying one input.
func WriteClassification(c Classification, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Classification
				Label string `json:"risk_class"`
			}{c, contract.GetPlainLabel(c.Risk.Class)})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeClassificationCSV(w, c)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeClassificationText(w, c, cfg)
		}, "Wrote text")
	}
}

func writeClassificationCSV(w io.Writer, c Classification) error {
	header := schema.Strings(append([]schema.ColumnKey{schema.ColProductID, schema.ColReviewCount}, schema.SentimentColumns[:8]...))
	header = append(header, string(schema.ColRiskClass), string(schema.ColRiskClassCode), string(schema.ColRiskScore))
	s := c.Sentiment
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		return csvWriter.Write([]string{
			c.ProductID,
			strconv.Itoa(c.ReviewCount),
			strconv.FormatBool(s.FitmentProblem),
			strconv.Itoa(s.FitmentSeverity),
			strconv.Itoa(s.QualitySentiment),
			strconv.FormatBool(s.DeliveryIssue),
			strconv.FormatBool(s.ColorMismatch),
			strconv.FormatBool(s.FabricQualityIssue),
			strconv.Itoa(s.PriceValuePerception),
			s.MainComplaint,
			contract.GetPlainLabel(c.Risk.Class),
			strconv.Itoa(int(c.Risk.Class)),
			strconv.Itoa(c.Risk.Score),
		})
	})
}

func writeClassificationText(w io.Writer, c Classification, cfg *contract.Config) error {
	s := c.Sentiment
	table := newTable(w, "Input", "Value")
	data := [][]string{
		{"Review count", strconv.Itoa(c.ReviewCount)},
		{"Fitment problem", formatBool(s.FitmentProblem)},
		{"Fitment severity", strconv.Itoa(s.FitmentSeverity)},
		{"Quality sentiment", strconv.Itoa(s.QualitySentiment)},
		{"Delivery issue", formatBool(s.DeliveryIssue)},
		{"Color mismatch", formatBool(s.ColorMismatch)},
		{"Fabric quality issue", formatBool(s.FabricQualityIssue)},
		{"Price/value perception", strconv.Itoa(s.PriceValuePerception)},
	}
	if c.ProductID != "" {
		data = append([][]string{{"Product", c.ProductID}}, data...)
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Risk: %s (code %d, score %d)\n",
		contract.GetLabel(c.Risk.Class, cfg.UseColors), int(c.Risk.Class), c.Risk.Score)
	return err
}
