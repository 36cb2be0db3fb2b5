package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/parquet"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/tabular"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// modelColumns is the CSV header of the modeling table.
var modelColumns = schema.Strings(append(append(append([]schema.ColumnKey{}, schema.FeatureColumns...), schema.SentimentColumns...),
	schema.ColHasSentiment, schema.ColRiskClass, schema.ColRiskClassCode, schema.ColRiskScore))

// WriteReport outputs the modeling table and its class distribution in the configured format.
func WriteReport(rows []schema.ModelRow, summary schema.ReportSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, jsonReport{Summary: summary, Products: toJSONModelRows(rows)})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeModelCSV(w, rows)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteModelRowsParquet(parquet.ConvertModelRows(rows), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		reportParquet(cfg.OutputFile, len(rows))
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeReportTable(w, rows, cfg); err != nil {
				return err
			}
			return writeDistribution(w, summary, cfg, duration)
		}, "Wrote table")
	}
}

// modelFields returns one CSV record of the modeling table. Features keep full precision
// because the table feeds model training.
func modelFields(r schema.ModelRow) []string {
	s := r.EffectiveSentiment()
	sampleSize := 0
	if r.Sentiment != nil {
		sampleSize = r.Sentiment.SampleSize
	}
	fields := tabular.FeatureFields(r.Features)
	return append(fields,
		strconv.FormatBool(s.FitmentProblem),
		strconv.Itoa(s.FitmentSeverity),
		strconv.Itoa(s.QualitySentiment),
		strconv.FormatBool(s.DeliveryIssue),
		strconv.FormatBool(s.ColorMismatch),
		strconv.FormatBool(s.FabricQualityIssue),
		strconv.Itoa(s.PriceValuePerception),
		s.MainComplaint,
		strconv.Itoa(sampleSize),
		strconv.FormatBool(r.HasSentiment()),
		contract.GetPlainLabel(r.Risk.Class),
		strconv.Itoa(int(r.Risk.Class)),
		strconv.Itoa(r.Risk.Score),
	)
}

func writeModelCSV(w io.Writer, rows []schema.ModelRow) error {
	return writeCSVWithHeader(w, modelColumns, func(csvWriter *csv.Writer) error {
		for _, r := range rows {
			if err := csvWriter.Write(modelFields(r)); err != nil {
				return err
			}
		}
		return nil
	})
}

// jsonModelRow flattens a modeling row for JSON consumers.
type jsonModelRow struct {
	schema.ProductFeatures
	schema.SentimentSummary
	SampleSize    int    `json:"review_sample_size"`
	HasSentiment  bool   `json:"has_sentiment"`
	RiskClass     string `json:"risk_class"`
	RiskClassCode int    `json:"risk_class_code"`
	RiskScore     int    `json:"risk_score"`
}

type jsonReport struct {
	Summary  schema.ReportSummary `json:"summary"`
	Products []jsonModelRow       `json:"products"`
}

func toJSONModelRows(rows []schema.ModelRow) []jsonModelRow {
	out := make([]jsonModelRow, len(rows))
	for i, r := range rows {
		out[i] = jsonModelRow{
			ProductFeatures:  r.Features,
			SentimentSummary: r.EffectiveSentiment(),
			HasSentiment:     r.HasSentiment(),
			RiskClass:        contract.GetPlainLabel(r.Risk.Class),
			RiskClassCode:    int(r.Risk.Class),
			RiskScore:        r.Risk.Score,
		}
		if r.Sentiment != nil {
			out[i].SampleSize = r.Sentiment.SampleSize
		}
	}
	return out
}

// reportTableReserved is the width of every report column except the complaint.
const reportTableReserved = 95

func writeReportTable(w io.Writer, rows []schema.ModelRow, cfg *contract.Config) error {
	complaintWidth := getMaxTextWidth(cfg, reportTableReserved)

	table := newTable(w, "#", "Product", "Reviews", "Sentiment", "Fitment", "Quality", "Score", "Risk", "Complaint")
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		s := r.EffectiveSentiment()
		fitment := "-"
		if s.FitmentProblem {
			fitment = strconv.Itoa(s.FitmentSeverity)
		}
		complaint := "-"
		if s.MainComplaint != "" {
			complaint = contract.TruncateText(s.MainComplaint, complaintWidth)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(r.Features.ProductID, minTextWidth+5),
			strconv.Itoa(r.Features.ReviewCount),
			formatBool(r.HasSentiment()),
			fitment,
			strconv.Itoa(s.QualitySentiment),
			strconv.Itoa(r.Risk.Score),
			contract.GetLabel(r.Risk.Class, cfg.UseColors),
			complaint,
		})
	}
	return renderTable(table, data)
}

// writeDistribution prints the class distribution and risk score statistics.
func writeDistribution(w io.Writer, summary schema.ReportSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	table := newTable(w, "Class", "Code", "Products", "Percent")
	data := make([][]string, 0, len(summary.Distribution))
	for _, c := range summary.Distribution {
		data = append(data, []string{
			contract.GetLabel(c.Class, cfg.UseColors),
			strconv.Itoa(c.Code),
			strconv.Itoa(c.Count),
			fmtFloat(c.Percent) + "%",
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Risk score mean %s (min %d, max %d). %d of %d products have extracted sentiment\n",
		fmtFloat(summary.ScoreMean), summary.ScoreMin, summary.ScoreMax, summary.WithSentiment, summary.Products); err != nil {
		return err
	}
	if n := len(summary.Mismatches); n > 0 {
		if _, err := fmt.Fprintf(w, "⚠️  %d products have a persisted risk that differs from the batch risk\n", n); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Report completed in %v\n", duration)
	return err
}
