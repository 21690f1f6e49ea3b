package format

import (
	"strconv"
	"strings"
	"time"
)

var monthsDE = [...]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli",
	"August", "September", "Oktober", "November", "Dezember"}

// FmtCount groups digits for display, e.g. 12345 => "12,345" (en) or "12.345" (de).
func FmtCount(n int, lang string) string {
	sep := ","
	if strings.ToLower(lang) == "de" {
		sep = "."
	}
	return thousandSep(int64(n), sep)
}

func thousandSep(n int64, sep string) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FmtDate formats time in a locale-friendly long form.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "de":
		return strconv.Itoa(t.Day()) + ". " + monthsDE[t.Month()-1] + " " + strconv.Itoa(t.Year())
	default:
		return t.Format("January 2, 2006")
	}
}

// ISODate is the machine-readable form used in <time datetime> and JSON-LD.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
