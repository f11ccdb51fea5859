// Package mailto builds the payment request a referee sends: an email body
// rendered from a template, wrapped in a mailto: URI that the QR code carries.
package mailto

import (
	"net/url"
	"strings"

	"github.com/okian/matchkey/internal/domain/canonical"
	"github.com/okian/matchkey/internal/domain/model"
)

// Template placeholders.
const (
	VarTeam1 = "{TEAM1}"
	VarTeam2 = "{TEAM2}"
	VarDate  = "{DATE}"
	VarTime  = "{TIME}"
	VarKey   = "{KEY}"
)

// DefaultSubject is used when none is configured.
const DefaultSubject = "Referee payment request"

// DefaultTemplate is the stock payment request body.
const DefaultTemplate = `Hello,

I refereed the following match:

- Team 1: {TEAM1}
- Team 2: {TEAM2}
- Date: {DATE}
- Time: {TIME}

Security key: {KEY}

IBAN: _______________________

(or attach a PDF with your bank details)

Thank you.`

// Fields are the values substituted into a template.
type Fields struct {
	Team1 string
	Team2 string
	Date  string
	Time  string
	Key   string
}

// FieldsFor builds display values for m: trimmed team names as typed, and the
// canonical date and time when those parse.
func FieldsFor(m model.Match, key string) Fields {
	m = m.Trimmed()
	return Fields{
		Team1: m.Team1,
		Team2: m.Team2,
		Date:  displayOr(canonical.Date(m.Date), m.Date),
		Time:  displayOr(canonical.Time(m.Time), m.Time),
		Key:   key,
	}
}

// SampleFields is used to preview a template.
var SampleFields = Fields{
	Team1: "Les Aigles Rouges",
	Team2: "Les Lions Bleus",
	Date:  "2025-06-20",
	Time:  "18:30",
	Key:   "ABC234DEF5",
}

func displayOr(canon, raw string) string {
	if strings.HasPrefix(canon, "~") {
		return raw
	}
	return canon
}

// Template is an email body with placeholders. Unknown placeholders are left
// untouched.
type Template struct {
	body string
}

// NewTemplate returns a Template; a blank body selects DefaultTemplate.
func NewTemplate(body string) Template {
	if strings.TrimSpace(body) == "" {
		body = DefaultTemplate
	}
	return Template{body: body}
}

// Body returns the raw template text.
func (t Template) Body() string { return t.body }

// Render substitutes f into the template.
func (t Template) Render(f Fields) string {
	return strings.NewReplacer(
		VarTeam1, f.Team1,
		VarTeam2, f.Team2,
		VarDate, f.Date,
		VarTime, f.Time,
		VarKey, f.Key,
	).Replace(t.body)
}

// Preview renders the template with SampleFields.
func (t Template) Preview() string {
	return t.Render(SampleFields)
}

// HasKey reports whether the template will carry the key at all. A template
// without {KEY} makes the whole request unverifiable.
func (t Template) HasKey() bool {
	return strings.Contains(t.body, VarKey)
}

// Link returns a mailto: URI. Subject and body are percent-encoded with %20
// for spaces, which mail clients decode more reliably than "+".
func Link(to, subject, body string) string {
	return "mailto:" + strings.TrimSpace(to) + "?subject=" + escape(subject) + "&body=" + escape(body)
}

// QueryEscape writes a literal "+" as %2B, so every remaining "+" is a space.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SuggestedFilename returns the file name offered when saving a QR image,
// e.g. QR_lions_vs_tigers_2025-06-01_18h30.png.
func SuggestedFilename(m model.Match) string {
	part := func(s string) string {
		s = strings.TrimPrefix(s, "~")
		return strings.ReplaceAll(s, " ", "_")
	}
	date := part(canonical.Date(m.Date))
	tm := strings.ReplaceAll(part(canonical.Time(m.Time)), ":", "h")
	return "QR_" + part(canonical.Team(m.Team1)) + "_vs_" + part(canonical.Team(m.Team2)) + "_" + date + "_" + tm + ".png"
}
