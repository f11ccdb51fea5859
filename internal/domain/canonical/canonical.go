// Package canonical maps loosely typed match details onto a single normalized
// form so that every spelling of the same fixture yields the same bytes.
//
// Rules:
//   - team names are case-folded, stripped of accents, and any rune that is not
//     a letter, digit or mark acts as a word separator;
//   - the two team names are sorted, so team order does not matter;
//   - dates become YYYY-MM-DD and times HH:MM (24h) when they can be parsed;
//     otherwise they are normalized like team names and prefixed with "~";
//   - fields are length-prefixed, so no split of adjacent text can collide.
//
// Every function in this package is pure.
package canonical

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/matchkey/internal/domain/model"
)

// Version is written at the head of every form. Changing the rules requires a
// new version, since it changes every derived key.
const Version = "matchkey/v1"

const (
	fieldSep       = '|'
	fallbackPrefix = "~"
)

// Form is the canonical encoding of a match.
type Form string

// Bytes returns the form as the byte sequence fed to the key deriver.
func (f Form) Bytes() []byte { return []byte(f) }

// String implements fmt.Stringer.
func (f Form) String() string { return string(f) }

// Canonicalize returns the canonical form of m.
func Canonicalize(m model.Match) Form {
	t1, t2 := Team(m.Team1), Team(m.Team2)
	if t2 < t1 {
		t1, t2 = t2, t1
	}
	return encode(t1, t2, Date(m.Date), Time(m.Time))
}

func encode(fields ...string) Form {
	var b strings.Builder
	b.WriteString(Version)
	for _, f := range fields {
		b.WriteByte(fieldSep)
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return Form(b.String())
}

// Team normalizes a team name: "  Saint-Étienne " -> "saint etienne".
func Team(s string) string {
	// Casers and transformers keep state; build them per call.
	s = cases.Fold().String(s)
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
	return strings.Join(words, " ")
}

// Date returns the canonical YYYY-MM-DD rendering of s. Accepted shapes use
// any of "/.- " as separators: Y-M-D with a four digit year first, D-M-Y
// (day first) with a two or four digit year, and compact YYYYMMDD.
// Two digit years are read as 20YY.
func Date(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if y, m, d, ok := parseDate(s); ok {
		return pad(y, 4) + "-" + pad(m, 2) + "-" + pad(d, 2)
	}
	return fallbackPrefix + Team(s)
}

// Time returns the canonical HH:MM rendering of s. Accepted: "18:30",
// "18h30", "18h", "18.30", "1830", "6:30 pm", and "18:30:00" (zero seconds).
func Time(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if h, m, ok := parseTime(s); ok {
		return pad(h, 2) + ":" + pad(m, 2)
	}
	return fallbackPrefix + Team(s)
}

func parseDate(s string) (year, month, day int, ok bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '.' || r == '-' || unicode.IsSpace(r)
	})
	for _, p := range parts {
		if !isDigits(p) {
			return 0, 0, 0, false
		}
	}

	switch {
	case len(parts) == 1 && len(parts[0]) == 8:
		p := parts[0]
		year, month, day = atoi(p[:4]), atoi(p[4:6]), atoi(p[6:])
	case len(parts) == 3 && len(parts[0]) == 4 && len(parts[1]) <= 2 && len(parts[2]) <= 2:
		year, month, day = atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
	case len(parts) == 3 && len(parts[0]) <= 2 && len(parts[1]) <= 2 && len(parts[2]) == 4:
		day, month, year = atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
	case len(parts) == 3 && len(parts[0]) <= 2 && len(parts[1]) <= 2 && len(parts[2]) == 2:
		day, month, year = atoi(parts[0]), atoi(parts[1]), 2000+atoi(parts[2])
	default:
		return 0, 0, 0, false
	}

	if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

func parseTime(s string) (hour, minute int, ok bool) {
	s = strings.ToLower(s)
	meridiem := ""
	for _, suffix := range []string{"am", "pm", "a.m.", "p.m."} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix[:1]
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ':' || r == 'h' || r == '.' || unicode.IsSpace(r)
	})
	for _, p := range parts {
		if !isDigits(p) {
			return 0, 0, false
		}
	}

	switch {
	case len(parts) == 1 && len(parts[0]) <= 2:
		hour = atoi(parts[0])
	case len(parts) == 1 && (len(parts[0]) == 3 || len(parts[0]) == 4):
		p := parts[0]
		hour, minute = atoi(p[:len(p)-2]), atoi(p[len(p)-2:])
	case len(parts) == 2 && len(parts[0]) <= 2 && len(parts[1]) == 2:
		hour, minute = atoi(parts[0]), atoi(parts[1])
	case len(parts) == 3 && len(parts[0]) <= 2 && len(parts[1]) == 2 && len(parts[2]) == 2 && atoi(parts[2]) == 0:
		hour, minute = atoi(parts[0]), atoi(parts[1])
	default:
		return 0, 0, false
	}

	switch meridiem {
	case "a", "p":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		hour %= 12
		if meridiem == "p" {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func daysIn(year, month int) int {
	switch month {
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoi is only called on isDigits-checked input of at most 8 digits.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
