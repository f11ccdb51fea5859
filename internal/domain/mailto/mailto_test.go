package mailto_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/okian/matchkey/internal/domain/mailto"
	"github.com/okian/matchkey/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTemplate(t *testing.T) {
	Convey("Given the default template", t, func() {
		tpl := mailto.NewTemplate("")

		Convey("Then it carries every placeholder", func() {
			for _, v := range []string{mailto.VarTeam1, mailto.VarTeam2, mailto.VarDate, mailto.VarTime, mailto.VarKey} {
				So(tpl.Body(), ShouldContainSubstring, v)
			}
			So(tpl.HasKey(), ShouldBeTrue)
		})

		Convey("When rendered", func() {
			out := tpl.Render(mailto.Fields{Team1: "Lions", Team2: "Tigers", Date: "2025-06-01", Time: "18:30", Key: "ABCDEFGHJK"})

			Convey("Then no placeholder is left", func() {
				So(out, ShouldNotContainSubstring, "{")
				So(out, ShouldContainSubstring, "Team 1: Lions")
				So(out, ShouldContainSubstring, "Security key: ABCDEFGHJK")
			})
		})

		Convey("When previewed", func() {
			So(tpl.Preview(), ShouldContainSubstring, mailto.SampleFields.Team1)
			So(tpl.Preview(), ShouldContainSubstring, mailto.SampleFields.Key)
		})
	})

	Convey("Given a custom template", t, func() {
		tpl := mailto.NewTemplate("{TEAM1} v {TEAM2} {KEY} {KEY} {UNKNOWN}")

		Convey("Then repeated placeholders are all replaced and unknown ones kept", func() {
			So(tpl.Render(mailto.Fields{Team1: "A", Team2: "B", Key: "K"}), ShouldEqual, "A v B K K {UNKNOWN}")
		})

		Convey("Then a value that looks like a placeholder is not expanded again", func() {
			So(tpl.Render(mailto.Fields{Team1: "{KEY}", Team2: "B", Key: "K"}), ShouldEqual, "{KEY} v B K K {UNKNOWN}")
		})

		Convey("Then a template without a key is detected", func() {
			So(mailto.NewTemplate("hello {TEAM1}").HasKey(), ShouldBeFalse)
		})
	})
}

func TestFieldsFor(t *testing.T) {
	Convey("Given a match typed loosely", t, func() {
		f := mailto.FieldsFor(model.Match{Team1: " Lions ", Team2: "Tigers", Date: "01/06/2025", Time: "18h30"}, "K")

		Convey("Then names are trimmed but keep their case", func() {
			So(f.Team1, ShouldEqual, "Lions")
		})

		Convey("Then date and time are shown canonically", func() {
			So(f.Date, ShouldEqual, "2025-06-01")
			So(f.Time, ShouldEqual, "18:30")
			So(f.Key, ShouldEqual, "K")
		})
	})

	Convey("Given a date that does not parse", t, func() {
		f := mailto.FieldsFor(model.Match{Team1: "A", Team2: "B", Date: "next Saturday", Time: "evening"}, "K")

		Convey("Then the typed text is shown", func() {
			So(f.Date, ShouldEqual, "next Saturday")
			So(f.Time, ShouldEqual, "evening")
		})
	})
}

func TestLink(t *testing.T) {
	Convey("Given a subject and a multi-line body", t, func() {
		body := "Line one & two = 3+4\nKey: ABCDEFGHJK"
		link := mailto.Link(" referee@example.org ", "Referee payment", body)

		Convey("Then it is a mailto URI addressed to the recipient", func() {
			So(link, ShouldStartWith, "mailto:referee@example.org?subject=")
		})

		Convey("Then spaces are written as %20", func() {
			So(link, ShouldContainSubstring, "Referee%20payment")
			So(link, ShouldNotContainSubstring, "+")
		})

		Convey("Then the query decodes back to the inputs", func() {
			u, err := url.Parse(link)
			So(err, ShouldBeNil)
			So(u.Scheme, ShouldEqual, "mailto")
			q, err := url.ParseQuery(u.RawQuery)
			So(err, ShouldBeNil)
			So(q.Get("subject"), ShouldEqual, "Referee payment")
			So(q.Get("body"), ShouldEqual, body)
			So(len(q), ShouldEqual, 2)
		})
	})
}

func TestSuggestedFilename(t *testing.T) {
	Convey("Given a parsed match", t, func() {
		name := mailto.SuggestedFilename(model.Match{Team1: "Les Lions", Team2: "Tigers", Date: "01/06/2025", Time: "18:30"})

		Convey("Then it names both teams, the date and the time", func() {
			So(name, ShouldEqual, "QR_les_lions_vs_tigers_2025-06-01_18h30.png")
		})
	})

	Convey("Given fields that do not parse", t, func() {
		name := mailto.SuggestedFilename(model.Match{Team1: "A/B", Team2: "C", Date: "next week", Time: "late"})

		Convey("Then the name stays free of separators", func() {
			So(strings.ContainsAny(name, "/~ :"), ShouldBeFalse)
			So(name, ShouldEqual, "QR_a_b_vs_c_next_week_late.png")
		})
	})
}
