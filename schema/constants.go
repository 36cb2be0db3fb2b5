package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the backend of the persisted sentiment store.
	DatabaseBackend string

	// ColumnKey names a column of the feature or modeling table.
	ColumnKey string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	CSVBackend        DatabaseBackend = "csv"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	CSVBackend:        {},
}

// IsSQL reports whether the backend is served by database/sql.
func (b DatabaseBackend) IsSQL() bool {
	switch b {
	case SQLiteBackend, MySQLBackend, PostgreSQLBackend:
		return true
	default:
		return false
	}
}

// Columns of the aggregate feature table and the modeling table.
const (
	ColProductID      ColumnKey = "product_id"
	ColBrand          ColumnKey = "brand"
	ColOverallRating  ColumnKey = "overall_rating"
	ColReviewCount    ColumnKey = "review_count"
	ColRatingStdDev   ColumnKey = "rating_stddev"
	ColRatingMin      ColumnKey = "rating_min"
	ColRatingMax      ColumnKey = "rating_max"
	ColStar1Ratio     ColumnKey = "star_1_ratio"
	ColStar2Ratio     ColumnKey = "star_2_ratio"
	ColStar3Ratio     ColumnKey = "star_3_ratio"
	ColStar4Ratio     ColumnKey = "star_4_ratio"
	ColStar5Ratio     ColumnKey = "star_5_ratio"
	ColNegativeRatio  ColumnKey = "negative_ratio"
	ColPositiveRatio  ColumnKey = "positive_ratio"
	ColReviewVelocity ColumnKey = "review_velocity"

	ColFitmentProblem       ColumnKey = "fitment_problem"
	ColFitmentSeverity      ColumnKey = "fitment_severity"
	ColQualitySentiment     ColumnKey = "quality_sentiment"
	ColDeliveryIssue        ColumnKey = "delivery_issue"
	ColColorMismatch        ColumnKey = "color_mismatch"
	ColFabricQualityIssue   ColumnKey = "fabric_quality_issue"
	ColPriceValuePerception ColumnKey = "price_value_perception"
	ColMainComplaint        ColumnKey = "main_complaint"
	ColSampleSize           ColumnKey = "review_sample_size"
	ColHasSentiment         ColumnKey = "has_sentiment"
	ColRiskClass            ColumnKey = "risk_class"
	ColRiskClassCode        ColumnKey = "risk_class_code"
	ColRiskScore            ColumnKey = "risk_score"
	ColRunID                ColumnKey = "run_id"
	ColExtractedAt          ColumnKey = "extracted_at"
)

// FeatureColumns is the column order of the aggregate feature table.
var FeatureColumns = []ColumnKey{
	ColProductID, ColBrand, ColOverallRating, ColReviewCount,
	ColRatingStdDev, ColRatingMin, ColRatingMax,
	ColStar1Ratio, ColStar2Ratio, ColStar3Ratio, ColStar4Ratio, ColStar5Ratio,
	ColNegativeRatio, ColPositiveRatio, ColReviewVelocity,
}

// SentimentColumns is the column order of the sentiment fields in persisted and merged rows.
var SentimentColumns = []ColumnKey{
	ColFitmentProblem, ColFitmentSeverity, ColQualitySentiment,
	ColDeliveryIssue, ColColorMismatch, ColFabricQualityIssue,
	ColPriceValuePerception, ColMainComplaint, ColSampleSize,
}

// Strings converts column keys to header strings.
func Strings(cols []ColumnKey) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}

// CorrectionFailedMarker is written in place of a review text when upstream spelling
// correction failed. Such texts carry no signal.
const CorrectionFailedMarker = "HATA"
