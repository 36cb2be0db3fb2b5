package reviews

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// isoDateLayout is accepted for review exports that already carry machine dates.
const isoDateLayout = "2006-01-02"

// turkishMonths maps lower-cased Turkish month names to months.
// ASCII-folded spellings are included since scraped text is not always diacritic-clean.
var turkishMonths = map[string]time.Month{
	"ocak":    time.January,
	"şubat":   time.February,
	"subat":   time.February,
	"mart":    time.March,
	"nisan":   time.April,
	"mayıs":   time.May,
	"mayis":   time.May,
	"haziran": time.June,
	"temmuz":  time.July,
	"ağustos": time.August,
	"agustos": time.August,
	"eylül":   time.September,
	"eylul":   time.September,
	"ekim":    time.October,
	"kasım":   time.November,
	"kasim":   time.November,
	"aralık":  time.December,
	"aralik":  time.December,
}

var (
	turkishLower = cases.Lower(language.Turkish)
	neutralLower = cases.Lower(language.Und)
)

// lookupMonth resolves a month token under Turkish casing first, then English.
func lookupMonth(token string) (time.Month, bool) {
	token = norm.NFC.String(token)
	if m, ok := turkishMonths[turkishLower.String(token)]; ok {
		return m, true
	}
	lower := neutralLower.String(token)
	if m, ok := turkishMonths[lower]; ok {
		return m, true
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if lower == name || (len(lower) == 3 && strings.HasPrefix(name, lower)) {
			return m, true
		}
	}
	return 0, false
}

// ParseReviewDate parses "<day> <month name> <year>" as written by the storefront,
// e.g. "12 Ağustos 2024" or "3 March 2025". ISO dates are accepted too.
// The result is midnight UTC of that calendar day.
func ParseReviewDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t, nil
	}

	fields := strings.Fields(s)
	if len(fields) != 3 {
		return time.Time{}, fmt.Errorf("unexpected date format %q", s)
	}
	day, err := strconv.Atoi(strings.TrimSuffix(fields[0], "."))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in %q", s)
	}
	month, ok := lookupMonth(fields[1])
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q", fields[1])
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 1 {
		return time.Time{}, fmt.Errorf("invalid year in %q", s)
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31 Şubat -> March), which is not a real date.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("day out of range in %q", s)
	}
	return t, nil
}
