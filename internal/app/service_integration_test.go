package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	service "github.com/okian/matchkey/internal/app"
	"github.com/okian/matchkey/internal/adapters/qrcode"
	"github.com/okian/matchkey/internal/adapters/repository"
	"github.com/okian/matchkey/internal/domain/keying"
	"github.com/okian/matchkey/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []string{repository.BackendFile, repository.BackendSQLite} {
		Convey("Given a service backed by a "+backend+" history", t, func() {
			path := filepath.Join(t.TempDir(), "history."+backend)
			store, err := repository.Open(ctx, backend, path)
			So(err, ShouldBeNil)

			svc, err := service.New(
				service.WithDeriver(newDeriver("TESTSALT")),
				service.WithStore(store),
				service.WithEncoder(qrcode.New(qrcode.WithSize(128))),
				service.WithTemplate("Key for {TEAM1} v {TEAM2}: {KEY}"),
			)
			So(err, ShouldBeNil)
			defer svc.Close()

			Convey("When several referees generate keys concurrently", func() {
				var wg sync.WaitGroup
				keys := make([]keying.Key, 10)
				for i := range keys {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						gen, err := svc.Generate(ctx, model.Match{
							Team1: "Lions", Team2: fmt.Sprintf("Team %d", i), Date: "2025-06-01", Time: "18:30",
						})
						if err == nil {
							keys[i] = gen.Key
						}
					}(i)
				}
				wg.Wait()

				Convey("Then every generation is recorded once", func() {
					history, err := svc.History(ctx)
					So(err, ShouldBeNil)
					So(len(history), ShouldEqual, 10)
				})

				Convey("Then each recorded entry re-verifies from its stored details", func() {
					history, err := svc.History(ctx)
					So(err, ShouldBeNil)
					for _, e := range history {
						v, err := svc.Verify(ctx, e.Match(), e.Key)
						So(err, ShouldBeNil)
						So(v.Valid(), ShouldBeTrue)
					}
				})

				Convey("Then a reopened store still holds the history", func() {
					So(svc.Close(), ShouldBeNil)
					reopened, err := repository.Open(ctx, backend, path)
					So(err, ShouldBeNil)
					defer reopened.Close()
					n, err := reopened.Count(ctx)
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 10)
				})
			})
		})
	}
}
