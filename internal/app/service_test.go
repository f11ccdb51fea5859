package service_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/okian/matchkey/internal/adapters/qrcode"
	"github.com/okian/matchkey/internal/adapters/repository"
	service "github.com/okian/matchkey/internal/app"
	"github.com/okian/matchkey/internal/domain/keying"
	"github.com/okian/matchkey/internal/domain/model"
	"github.com/okian/matchkey/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var reference = model.Match{Team1: "Lions", Team2: "Tigers", Date: "2025-06-01", Time: "18:30"}

func newDeriver(salt string) *keying.Deriver {
	d, err := keying.NewDeriver([]byte(salt))
	if err != nil {
		panic(err)
	}
	return d
}

func newService(opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithDeriver(newDeriver("TESTSALT")),
		service.WithLogger(logger.Get()),
	}, opts...)
	svc, err := service.New(opts...)
	if err != nil {
		panic(err)
	}
	return svc
}

// failingStore refuses every write.
type failingStore struct {
	repository.Store
}

func (failingStore) Append(context.Context, model.HistoryEntry) error {
	return errors.New("disk full")
}

func TestService_New(t *testing.T) {
	Convey("Given no deriver", t, func() {
		svc, err := service.New()

		Convey("Then construction fails", func() {
			So(svc, ShouldBeNil)
			So(err, ShouldEqual, service.ErrNoDeriver)
		})
	})

	Convey("Given a deriver", t, func() {
		svc := newService()

		Convey("Then defaults are filled in", func() {
			So(svc.SaltID(), ShouldEqual, newDeriver("TESTSALT").SaltID())
			So(svc.Template().HasKey(), ShouldBeTrue)
		})
	})
}

func TestService_Generate(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	Convey("Given a service", t, func() {
		svc := newService(
			service.WithRecipient("payments@example.org"),
			service.WithSubject("Referee payment"),
			service.WithClock(func() time.Time { return fixed }),
		)

		Convey("When a match is generated", func() {
			gen, err := svc.Generate(ctx, model.Match{Team1: " Lions ", Team2: "Tigers", Date: "01/06/2025", Time: "18h30"})
			So(err, ShouldBeNil)

			Convey("Then the key is the deterministic key of the match", func() {
				So(gen.Key, ShouldEqual, newDeriver("TESTSALT").DeriveMatch(reference))
			})

			Convey("Then the mailto carries the key in its body", func() {
				u, err := url.Parse(gen.Mailto)
				So(err, ShouldBeNil)
				So(u.Opaque, ShouldEqual, "payments@example.org")
				q, err := url.ParseQuery(u.RawQuery)
				So(err, ShouldBeNil)
				So(q.Get("subject"), ShouldEqual, "Referee payment")
				So(q.Get("body"), ShouldContainSubstring, gen.Key.String())
				So(q.Get("body"), ShouldContainSubstring, "2025-06-01")
				So(gen.Body, ShouldEqual, q.Get("body"))
			})

			Convey("Then a QR image and a file name are produced", func() {
				So(bytes.HasPrefix(gen.PNG, []byte("\x89PNG")), ShouldBeTrue)
				So(gen.Filename, ShouldEqual, "QR_lions_vs_tigers_2025-06-01_18h30.png")
			})

			Convey("Then the generation is recorded", func() {
				So(gen.Entry.ID, ShouldNotBeEmpty)
				So(gen.Entry.CreatedAt, ShouldEqual, fixed)
				So(gen.Entry.Team1, ShouldEqual, "Lions")
				So(gen.Entry.CanonicalTime, ShouldEqual, "18:30")
				So(gen.Entry.SaltID, ShouldEqual, svc.SaltID())

				history, err := svc.History(ctx)
				So(err, ShouldBeNil)
				So(len(history), ShouldEqual, 1)
				So(history[0].ID, ShouldEqual, gen.Entry.ID)
			})

			Convey("Then the generated key verifies", func() {
				v, err := svc.Verify(ctx, reference, gen.Key.String())
				So(err, ShouldBeNil)
				So(v.Valid(), ShouldBeTrue)
			})
		})

		Convey("When a team is missing", func() {
			_, err := svc.Generate(ctx, model.Match{Team1: "Lions", Team2: "  "})

			Convey("Then the input is rejected", func() {
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(err, model.ErrMissingField), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "team2")
			})
		})

		Convey("When a team name is too long for a QR code", func() {
			m := reference
			m.Team1 = strings.Repeat("Lions ", 600)
			_, err := svc.Generate(ctx, m)

			Convey("Then it is rejected as input and nothing is recorded", func() {
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(err, qrcode.ErrPayloadTooLarge), ShouldBeTrue)
				history, err := svc.History(ctx)
				So(err, ShouldBeNil)
				So(history, ShouldBeEmpty)
			})

			Convey("Then the key still verifies", func() {
				key := newDeriver("TESTSALT").DeriveMatch(m)
				v, err := svc.Verify(ctx, m, key.String())
				So(err, ShouldBeNil)
				So(v.Valid(), ShouldBeTrue)
			})
		})

		Convey("When the date and time are blank", func() {
			gen, err := svc.Generate(ctx, model.Match{Team1: "Lions", Team2: "Tigers"})

			Convey("Then a key is still produced", func() {
				So(err, ShouldBeNil)
				So(len(gen.Key), ShouldEqual, keying.Length)
			})
		})
	})

	Convey("Given a history store that fails", t, func() {
		svc := newService(service.WithStore(failingStore{repository.NewMemoryStore()}))

		Convey("Then generation still succeeds", func() {
			gen, err := svc.Generate(ctx, reference)
			So(err, ShouldBeNil)
			So(gen.Key, ShouldNotBeEmpty)
		})
	})
}

func TestService_Verify(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service and the reference key", t, func() {
		svc := newService()
		key := newDeriver("TESTSALT").DeriveMatch(reference)

		Convey("When the details are re-typed differently", func() {
			v, err := svc.Verify(ctx, model.Match{Team1: "TIGERS", Team2: "lions", Date: "20250601", Time: "6:30 pm"}, strings.ToLower(key.String()))

			Convey("Then the key is valid", func() {
				So(err, ShouldBeNil)
				So(v.Outcome, ShouldEqual, keying.OutcomeValid)
				So(v.CanonicalDate, ShouldEqual, "2025-06-01")
				So(v.CanonicalTime, ShouldEqual, "18:30")
			})
		})

		Convey("When the time differs", func() {
			m := reference
			m.Time = "19:30"
			v, err := svc.Verify(ctx, m, key.String())

			Convey("Then the key is invalid and the expected key is masked", func() {
				So(err, ShouldBeNil)
				So(v.Outcome, ShouldEqual, keying.OutcomeInvalid)
				So(v.MaskedExpected, ShouldStartWith, "******")
				So(len(v.MaskedExpected), ShouldEqual, keying.Length)
			})
		})

		Convey("When the key is too short", func() {
			v, err := svc.Verify(ctx, reference, "ABC")
			So(err, ShouldBeNil)
			So(v.Outcome, ShouldEqual, keying.OutcomeMalformed)
		})

		Convey("When the key is blank", func() {
			for _, candidate := range []string{"", "   ", "\t\n"} {
				v, err := svc.Verify(ctx, reference, candidate)
				So(err, ShouldBeNil)
				So(v.Outcome, ShouldEqual, keying.OutcomeMalformed)
				So(v.MaskedExpected, ShouldStartWith, "******")
			}
		})

		Convey("When a team is blank", func() {
			_, err := svc.Verify(ctx, model.Match{Team1: "Lions"}, key.String())
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When another salt is in use", func() {
			other, err := service.New(service.WithDeriver(newDeriver("OTHERSALT")))
			So(err, ShouldBeNil)
			v, err := other.Verify(ctx, reference, key.String())
			So(err, ShouldBeNil)
			So(v.Outcome, ShouldEqual, keying.OutcomeInvalid)
		})
	})
}

func TestService_HistoryStats(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("CEST", 2*60*60)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, loc)

	Convey("Given generations across two days", t, func() {
		clock := now
		svc := newService(service.WithClock(func() time.Time { return clock }))

		for _, at := range []time.Time{
			time.Date(2025, 6, 1, 12, 0, 0, 0, loc),
			time.Date(2025, 6, 2, 0, 30, 0, 0, loc), // 2025-06-01 22:30 UTC
			time.Date(2025, 6, 2, 8, 0, 0, 0, loc),
		} {
			clock = at
			_, err := svc.Generate(ctx, reference)
			So(err, ShouldBeNil)
		}
		clock = now

		Convey("Then today is counted in the clock's zone", func() {
			st, err := svc.Stats(ctx)
			So(err, ShouldBeNil)
			So(st.Total, ShouldEqual, 3)
			So(st.Today, ShouldEqual, 2)
			So(st.Last, ShouldNotBeNil)
			So(st.Last.Equal(time.Date(2025, 6, 2, 8, 0, 0, 0, loc)), ShouldBeTrue)
		})

		Convey("When the history is cleared", func() {
			So(svc.ClearHistory(ctx), ShouldBeNil)

			Convey("Then it is empty", func() {
				history, err := svc.History(ctx)
				So(err, ShouldBeNil)
				So(history, ShouldBeEmpty)

				st, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(st.Total, ShouldEqual, 0)
				So(st.Last, ShouldBeNil)
			})
		})
	})
}
