package core

import (
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// MergeReport left-joins the feature table with the persisted sentiment rows on product id
// and re-classifies every row in batch. Products without sentiment get the neutral default.
// If the store holds more than one row for a product, the first one wins.
func MergeReport(features []schema.ProductFeatures, records []schema.SentimentRecord) []schema.ModelRow {
	byProduct := make(map[string]*schema.SentimentRecord, len(records))
	for i := range records {
		if _, ok := byProduct[records[i].ProductID]; !ok {
			byProduct[records[i].ProductID] = &records[i]
		}
	}

	seen := make(map[string]struct{}, len(features))
	rows := make([]schema.ModelRow, 0, len(features))
	for _, f := range features {
		if _, ok := seen[f.ProductID]; ok {
			continue
		}
		seen[f.ProductID] = struct{}{}

		row := schema.ModelRow{Features: f}
		if rec, ok := byProduct[f.ProductID]; ok {
			copied := *rec
			row.Sentiment = &copied
		}
		row.Risk = Classify(f.ReviewCount, row.EffectiveSentiment())
		rows = append(rows, row)
	}
	return rows
}

// CheckConsistency lists products whose risk persisted during extraction differs from
// the batch risk of the merged table. Any entry is a defect: both come from Classify.
func CheckConsistency(rows []schema.ModelRow) []schema.RiskMismatch {
	var out []schema.RiskMismatch
	for _, row := range rows {
		if !row.HasSentiment() {
			continue
		}
		if incremental := row.Sentiment.Risk(); incremental != row.Risk {
			out = append(out, schema.RiskMismatch{
				ProductID:   row.Features.ProductID,
				Incremental: incremental,
				Batch:       row.Risk,
			})
		}
	}
	return out
}

// SummarizeReport computes the class distribution and risk score statistics of a merged table.
func SummarizeReport(rows []schema.ModelRow) schema.ReportSummary {
	summary := schema.ReportSummary{Products: len(rows)}

	counts := make(map[schema.RiskClass]int, len(schema.AllRiskClasses))
	var total int
	for i, row := range rows {
		counts[row.Risk.Class]++
		if row.HasSentiment() {
			summary.WithSentiment++
		}
		total += row.Risk.Score
		if i == 0 || row.Risk.Score < summary.ScoreMin {
			summary.ScoreMin = row.Risk.Score
		}
		if i == 0 || row.Risk.Score > summary.ScoreMax {
			summary.ScoreMax = row.Risk.Score
		}
	}
	if len(rows) > 0 {
		summary.ScoreMean = float64(total) / float64(len(rows))
	}

	for _, class := range schema.AllRiskClasses {
		cc := schema.ClassCount{Class: class, Label: class.String(), Code: int(class), Count: counts[class]}
		if len(rows) > 0 {
			cc.Percent = 100 * float64(cc.Count) / float64(len(rows))
		}
		summary.Distribution = append(summary.Distribution, cc)
	}
	summary.Mismatches = CheckConsistency(rows)
	return summary
}
