package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/matchkey/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QR.Size, convey.ShouldEqual, 256)
			convey.So(cfg.QR.Recovery, convey.ShouldEqual, "low")
			convey.So(cfg.History.Backend, convey.ShouldEqual, "file")
			convey.So(filepath.Base(cfg.History.Path), convey.ShouldEqual, "history.json")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then no salt is configured", func() {
			_, err := cfg.SaltBytes()
			convey.So(errors.Is(err, config.ErrMissingSalt), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out of range values", t, func() {
		mutations := map[string]func(*config.Config){
			"backend":     func(c *config.Config) { c.History.Backend = "redis" },
			"path":        func(c *config.Config) { c.History.Path = " " },
			"log format":  func(c *config.Config) { c.LogFormat = "xml" },
			"recovery":    func(c *config.Config) { c.QR.Recovery = "ultra" },
			"size":        func(c *config.Config) { c.QR.Size = 0 },
			"addr":        func(c *config.Config) { c.Addr = "" },
			"max entries": func(c *config.Config) { c.History.MaxEntries = -1 },
		}

		for name, mutate := range mutations {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldNotBeEmpty)
			t.Logf("%s: %v", name, err)
		}

		convey.Convey("Then a memory backend needs no path", func() {
			cfg := config.New()
			cfg.History.Backend = "memory"
			cfg.History.Path = ""
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Secrets(t *testing.T) {
	convey.Convey("Given a configured salt", t, func() {
		cfg := config.New()
		cfg.Salt = "s3cret"

		b, err := cfg.SaltBytes()
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(b), convey.ShouldEqual, "s3cret")

		convey.Convey("A blank salt counts as missing", func() {
			cfg.Salt = "   "
			_, err := cfg.SaltBytes()
			convey.So(err, convey.ShouldEqual, config.ErrMissingSalt)
		})
	})
}

func TestConfig_TemplateBody(t *testing.T) {
	convey.Convey("Given template settings", t, func() {
		cfg := config.New()

		convey.Convey("When only an inline template is set", func() {
			cfg.Template = "inline {KEY}"
			body, err := cfg.TemplateBody()
			convey.So(err, convey.ShouldBeNil)
			convey.So(body, convey.ShouldEqual, "inline {KEY}")
		})

		convey.Convey("When a template file is set", func() {
			path := filepath.Join(t.TempDir(), "body.txt")
			convey.So(os.WriteFile(path, []byte("from file {KEY}"), 0o600), convey.ShouldBeNil)
			cfg.Template = "inline"
			cfg.TemplateFile = path

			body, err := cfg.TemplateBody()
			convey.So(err, convey.ShouldBeNil)
			convey.So(body, convey.ShouldEqual, "from file {KEY}")
		})

		convey.Convey("When the template file is missing", func() {
			cfg.TemplateFile = filepath.Join(t.TempDir(), "nope.txt")
			_, err := cfg.TemplateBody()
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})
	})
}
