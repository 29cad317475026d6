package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"

	"github.com/Rshep3087/expensemon/apperr"
	"github.com/Rshep3087/expensemon/transaction"
)

// MonthKey identifies a calendar month. It is the canonical bucket key for
// the monthly series; labels are derived from it only for display.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month a date falls in.
func MonthOf(d transaction.Date) MonthKey {
	return MonthKey{Year: d.Year, Month: d.Month}
}

// CurrentMonth returns the month of now in the local time zone.
func CurrentMonth() MonthKey {
	now := time.Now()
	return MonthKey{Year: now.Year(), Month: now.Month()}
}

// ParseMonthKey parses a month selector in the form YYYY-MM (YYYY-M is accepted too).
func ParseMonthKey(s string) (MonthKey, error) {
	const op = "parse month"

	year, month, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || len(year) != 4 || len(month) == 0 || len(month) > 2 {
		return MonthKey{}, apperr.Errorf(apperr.ValidationFailure, op, "invalid month %q (expected YYYY-MM)", s)
	}

	y, err := strconv.Atoi(year)
	if err != nil {
		return MonthKey{}, apperr.Errorf(apperr.ValidationFailure, op, "invalid year in %q", s)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return MonthKey{}, apperr.Errorf(apperr.ValidationFailure, op, "invalid month in %q", s)
	}

	return MonthKey{Year: y, Month: time.Month(m)}, nil
}

// String returns the key as YYYY-MM.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

func (k MonthKey) IsZero() bool { return k == MonthKey{} }

// Compare orders keys chronologically.
func (k MonthKey) Compare(o MonthKey) int {
	switch {
	case k.Year < o.Year:
		return -1
	case k.Year > o.Year:
		return 1
	case k.Month < o.Month:
		return -1
	case k.Month > o.Month:
		return 1
	}
	return 0
}

func (k MonthKey) Next() MonthKey {
	if k.Month == time.December {
		return MonthKey{Year: k.Year + 1, Month: time.January}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

func (k MonthKey) Prev() MonthKey {
	if k.Month == time.January {
		return MonthKey{Year: k.Year - 1, Month: time.December}
	}
	return MonthKey{Year: k.Year, Month: k.Month - 1}
}

// StartDate and EndDate bound the month, for building a transaction filter.
func (k MonthKey) StartDate() transaction.Date {
	return transaction.Date{Year: k.Year, Month: k.Month, Day: 1}
}

func (k MonthKey) EndDate() transaction.Date {
	last := time.Date(k.Year, k.Month+1, 0, 0, 0, 0, 0, time.UTC)
	return transaction.DateOf(last)
}

// CanonicalLocale is the locale used for labels when none is configured.
var CanonicalLocale = language.English

// labelLocales and labelMatcher list the same locales in the same order.
// The first entry is the fallback for unsupported locales.
var labelLocales, labelMatcher = newLabelMatcher()

func newLabelMatcher() ([]monday.Locale, language.Matcher) {
	locales := []monday.Locale{monday.LocaleEnUS}
	tags := []language.Tag{language.AmericanEnglish}
	for _, l := range monday.ListLocales() {
		if l == monday.LocaleEnUS {
			continue
		}
		tag, err := language.Parse(strings.ReplaceAll(string(l), "_", "-"))
		if err != nil {
			continue
		}
		locales = append(locales, l)
		tags = append(tags, tag)
	}
	return locales, language.NewMatcher(tags)
}

// Label formats the key for display, e.g. "Jan 2025" for English.
// Unsupported locales fall back to English.
func (k MonthKey) Label(locale language.Tag) string {
	if k.Month < time.January || k.Month > time.December {
		return k.String()
	}
	_, idx, conf := labelMatcher.Match(locale)
	if conf == language.No {
		idx = 0
	}
	first := time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
	return monday.Format(first, "Jan 2006", labelLocales[idx])
}

// ParseLocale parses a BCP 47 tag, falling back to the canonical locale.
func ParseLocale(s string) language.Tag {
	if s == "" {
		return CanonicalLocale
	}
	tag, err := language.Parse(s)
	if err != nil {
		return CanonicalLocale
	}
	return tag
}
