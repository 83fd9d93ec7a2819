package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Locales with month names; anything else falls back to English.
var (
	supportedLocales = []language.Tag{language.English, language.French, language.German, language.Spanish}
	localeMatcher    = language.NewMatcher(supportedLocales)

	monthNames = [][12]string{
		{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
		{"Jan.", "Feb.", "März", "Apr.", "Mai", "Juni", "Juli", "Aug.", "Sept.", "Okt.", "Nov.", "Dez."},
		{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	}
)

const (
	localeEnglish = iota
	localeFrench
	localeGerman
	localeSpanish
)

func matchLocale(locale string) int {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return localeEnglish
	}
	_, index, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return localeEnglish
	}
	return index
}

// FormatDate renders the calendar date of t in UTC, e.g. "Dec 30, 2021".
func FormatDate(t time.Time, locale string) string {
	t = t.UTC()
	loc := matchLocale(locale)
	month := monthNames[loc][t.Month()-1]
	switch loc {
	case localeEnglish:
		return fmt.Sprintf("%s %d, %d", month, t.Day(), t.Year())
	case localeGerman:
		return fmt.Sprintf("%d. %s %d", t.Day(), month, t.Year())
	default:
		return fmt.Sprintf("%d %s %d", t.Day(), month, t.Year())
	}
}

// FormatTime renders the wall clock of t in UTC: 12-hour in English, 24-hour otherwise.
func FormatTime(t time.Time, locale string) string {
	t = t.UTC()
	if matchLocale(locale) == localeEnglish {
		return t.Format("03:04 PM")
	}
	return t.Format("15:04")
}

// FormatDateTime combines FormatDate and FormatTime.
func FormatDateTime(t time.Time, locale string) string {
	return FormatDate(t, locale) + ", " + FormatTime(t, locale)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes the backend emits. Values
// without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Timestamp formats a backend timestamp, or "Never" when it is missing.
// Unparseable values are returned unchanged.
func Timestamp(s *string, locale string) string {
	if s == nil || *s == "" {
		return "Never"
	}
	t, err := ParseTimestamp(*s)
	if err != nil {
		return *s
	}
	return FormatDateTime(t, locale)
}
