// Package reviews is the read-only review store: CSV ingestion, storefront date parsing
// and per-product grouping.
package reviews

import (
	"fmt"
	"os"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// Store groups reviews by product, keeping the order products are first seen in.
type Store struct {
	order     []string
	byProduct map[string][]schema.Review
	stats     schema.IngestStats
}

var _ contract.ReviewSource = &Store{} // Compile-time check

// NewStore groups already-ingested reviews.
func NewStore(reviews []schema.Review) *Store {
	s := &Store{byProduct: make(map[string][]schema.Review)}
	for _, r := range reviews {
		if _, ok := s.byProduct[r.ProductID]; !ok {
			s.order = append(s.order, r.ProductID)
		}
		s.byProduct[r.ProductID] = append(s.byProduct[r.ProductID], r)
	}
	s.stats = schema.IngestStats{Rows: len(reviews), Kept: len(reviews)}
	return s
}

// LoadFile reads a review CSV from disk and groups it.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reviews file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, stats, err := ReadReviews(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s := NewStore(rows)
	s.stats = stats
	return s, nil
}

// Products returns product ids in encounter order.
func (s *Store) Products() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Reviews returns the reviews of a product in input order.
func (s *Store) Reviews(productID string) []schema.Review {
	return s.byProduct[productID]
}

// Stats returns what happened to the input rows during ingestion.
func (s *Store) Stats() schema.IngestStats {
	return s.stats
}

// Len returns the number of reviews kept.
func (s *Store) Len() int {
	n := 0
	for _, rs := range s.byProduct {
		n += len(rs)
	}
	return n
}
