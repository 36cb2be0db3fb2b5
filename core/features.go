package core

import (
	"math"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

const hoursPerDay = 24

// BuildFeatures computes one aggregate feature row per product, in encounter order.
// Products without reviews are skipped. Nothing here looks at sentiment or risk labels,
// so the table can be built before any label exists.
func BuildFeatures(src contract.ReviewSource) []schema.ProductFeatures {
	products := src.Products()
	out := make([]schema.ProductFeatures, 0, len(products))
	for _, id := range products {
		reviews := src.Reviews(id)
		if len(reviews) == 0 {
			continue
		}
		out = append(out, buildProductFeatures(id, reviews))
	}
	return out
}

// buildProductFeatures aggregates the reviews of a single product.
func buildProductFeatures(id string, reviews []schema.Review) schema.ProductFeatures {
	n := len(reviews)
	f := schema.ProductFeatures{
		ProductID:   id,
		ReviewCount: n,
		RatingMin:   reviews[0].StarRating,
		RatingMax:   reviews[0].StarRating,
		FirstReview: reviews[0].Date,
		LastReview:  reviews[0].Date,
	}

	var counts [5]int
	sum := 0
	for _, r := range reviews {
		if f.Brand == "" {
			f.Brand = r.Brand
		}
		// All rows of a product carry the same vendor rating; the first one present wins.
		if f.OverallRating == nil && r.VendorRating != nil {
			v := *r.VendorRating
			f.OverallRating = &v
		}
		if r.StarRating >= 1 && r.StarRating <= 5 {
			counts[r.StarRating-1]++
		}
		sum += r.StarRating
		f.RatingMin = min(f.RatingMin, r.StarRating)
		f.RatingMax = max(f.RatingMax, r.StarRating)
		if r.Date.Before(f.FirstReview) {
			f.FirstReview = r.Date
		}
		if r.Date.After(f.LastReview) {
			f.LastReview = r.Date
		}
	}

	for k, c := range counts {
		f.StarProportions[k] = float64(c) / float64(n)
	}
	f.NegativeRatio = float64(counts[0]+counts[1]) / float64(n)
	f.PositiveRatio = float64(counts[3]+counts[4]) / float64(n)

	if n > 1 {
		mean := float64(sum) / float64(n)
		var ss float64
		for _, r := range reviews {
			d := float64(r.StarRating) - mean
			ss += d * d
		}
		stddev := math.Sqrt(ss / float64(n-1))
		f.RatingStdDev = &stddev
	}

	f.SpanDays = int(f.LastReview.Sub(f.FirstReview).Hours() / hoursPerDay)
	if f.SpanDays == 0 {
		f.ReviewVelocity = float64(n)
	} else {
		f.ReviewVelocity = float64(n) / float64(max(1, f.SpanDays))
	}
	return f
}

// SummarizeFeatures describes a feature table: counts and a few column means.
func SummarizeFeatures(features []schema.ProductFeatures) schema.FeatureSummary {
	s := schema.FeatureSummary{Products: len(features)}
	if len(features) == 0 {
		return s
	}
	var neg, counts, stddev float64
	withStdDev := 0
	for _, f := range features {
		s.Reviews += f.ReviewCount
		neg += f.NegativeRatio
		counts += float64(f.ReviewCount)
		if f.RatingStdDev != nil {
			stddev += *f.RatingStdDev
			withStdDev++
		}
	}
	s.MeanNegativeRatio = neg / float64(len(features))
	s.MeanReviewCount = counts / float64(len(features))
	if withStdDev > 0 {
		s.MeanStdDev = stddev / float64(withStdDev)
	}
	return s
}
