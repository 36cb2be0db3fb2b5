package reviews

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const turkishCSV = "\uFEFFÜrün,Marka,Genel Puan,Yorum,duzeltilmis_yorum,Tarih,Puan,Boy,Kilo,Beden\n" +
	"Elbise A,Moda,\"4,5\",kumas kotu,kumaş kötü,12 Ocak 2024,2,170,60,M\n" +
	"Elbise A,Moda,\"4,5\",guzel,güzel,10 Ocak 2024,5.0,,,\n" +
	"Elbise B,Stil,3,HATA,HATA,1 Şubat 2024,4,,,\n" +
	"Elbise B,Stil,3,bozuk tarih,bozuk tarih,dün,4,,,\n" +
	"Elbise B,Stil,3,yıldızsız,yıldızsız,2 Şubat 2024,,,,\n" +
	",Stil,3,ürünsüz,ürünsüz,2 Şubat 2024,3,,,\n"

func TestReadReviewsTurkishHeaders(t *testing.T) {
	rows, stats, err := ReadReviews(strings.NewReader(turkishCSV))
	require.NoError(t, err)

	assert.Equal(t, schema.IngestStats{Rows: 6, Kept: 3, DroppedDate: 1, DroppedStar: 1, DroppedProduct: 1}, stats)
	assert.Equal(t, 3, stats.Dropped())
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, "Elbise A", first.ProductID)
	assert.Equal(t, "Moda", first.Brand)
	require.NotNil(t, first.VendorRating)
	assert.InDelta(t, 4.5, *first.VendorRating, 1e-9)
	assert.Equal(t, "kumaş kötü", first.Text, "corrected text column is preferred")
	assert.Equal(t, 2, first.StarRating)
	assert.Equal(t, schema.ReviewerAttributes{Height: "170", Weight: "60", Size: "M"}, first.Attributes)

	assert.Equal(t, 5, rows[1].StarRating)
	assert.Equal(t, "HATA", rows[2].Text)
}

func TestReadReviewsEnglishHeaders(t *testing.T) {
	input := "product,brand,overall_rating,text,date,star_rating\n" +
		"p1,b1,,nice,3 March 2025,5\n"
	rows, stats, err := ReadReviews(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, stats.Kept)
	assert.Nil(t, rows[0].VendorRating)
	assert.Equal(t, "nice", rows[0].Text)
}

func TestReadReviewsMissingColumns(t *testing.T) {
	_, _, err := ReadReviews(strings.NewReader("Ürün,Yorum\np1,hi\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date")
	assert.Contains(t, err.Error(), "star rating")

	_, _, err = ReadReviews(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseStarRating(t *testing.T) {
	for input, want := range map[string]int{"1": 1, "5": 5, "5.0": 5, " 3 ": 3, "4,0": 4} {
		got, err := ParseStarRating(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	for _, input := range []string{"", "0", "6", "4.5", "five"} {
		_, err := ParseStarRating(input)
		assert.Error(t, err, input)
	}
}

func TestParseVendorRating(t *testing.T) {
	v, err := ParseVendorRating("4,3")
	require.NoError(t, err)
	assert.InDelta(t, 4.3, *v, 1e-9)

	v, err = ParseVendorRating("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseVendorRating("n/a")
	assert.Error(t, err)
}

func TestStoreGrouping(t *testing.T) {
	rows, _, err := ReadReviews(strings.NewReader(turkishCSV))
	require.NoError(t, err)
	s := NewStore(rows)

	assert.Equal(t, []string{"Elbise A", "Elbise B"}, s.Products())
	assert.Len(t, s.Reviews("Elbise A"), 2)
	assert.Len(t, s.Reviews("Elbise B"), 1)
	assert.Empty(t, s.Reviews("missing"))
	assert.Equal(t, 3, s.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte(turkishCSV), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Stats().Rows)
	assert.Equal(t, 3, s.Stats().Dropped())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
