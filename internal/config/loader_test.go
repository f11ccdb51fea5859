package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/matchkey/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"MATCHKEY_CONFIG",
	"MATCHKEY_DOTENV",
	"MATCHKEY_ADDR",
	"MATCHKEY_SALT",
	"MATCHKEY_LOG_LEVEL",
	"MATCHKEY_LOG_FORMAT",
	"MATCHKEY_RECIPIENT",
	"MATCHKEY_QR__SIZE",
	"MATCHKEY_QR__RECOVERY",
	"MATCHKEY_HISTORY__BACKEND",
	"MATCHKEY_HISTORY__PATH",
	"MATCHKEY_HISTORY__MAX_ENTRIES",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QR.Size, convey.ShouldEqual, 256)
				convey.So(cfg.History.Backend, convey.ShouldEqual, "file")
				convey.So(cfg.Salt, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MATCHKEY_ADDR", ":8080")
			_ = os.Setenv("MATCHKEY_SALT", "pepper")
			_ = os.Setenv("MATCHKEY_LOG_LEVEL", "debug")
			_ = os.Setenv("MATCHKEY_QR__SIZE", "512")
			_ = os.Setenv("MATCHKEY_HISTORY__BACKEND", "SQLite")
			_ = os.Setenv("MATCHKEY_HISTORY__PATH", "/tmp/h.db")
			_ = os.Setenv("MATCHKEY_HISTORY__MAX_ENTRIES", "50")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Salt, convey.ShouldEqual, "pepper")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.QR.Size, convey.ShouldEqual, 512)
				convey.So(cfg.QR.Recovery, convey.ShouldEqual, "low")
				convey.So(cfg.History.Backend, convey.ShouldEqual, "sqlite")
				convey.So(cfg.History.Path, convey.ShouldEqual, "/tmp/h.db")
				convey.So(cfg.History.MaxEntries, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeTempFile(t, "matchkey.yaml", `
addr: ":9090"
salt: "from-yaml"
recipient: "club@example.org"
qr:
  size: 300
  recovery: medium
history:
  backend: memory
`)
			_ = os.Setenv("MATCHKEY_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Salt, convey.ShouldEqual, "from-yaml")
				convey.So(cfg.Recipient, convey.ShouldEqual, "club@example.org")
				convey.So(cfg.QR.Size, convey.ShouldEqual, 300)
				convey.So(cfg.QR.Recovery, convey.ShouldEqual, "medium")
				convey.So(cfg.History.Backend, convey.ShouldEqual, "memory")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})

			convey.Convey("And env vars take precedence over the file", func() {
				_ = os.Setenv("MATCHKEY_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.Salt, convey.ShouldEqual, "from-yaml")
			})
		})

		convey.Convey("When loading config with a .env file", func() {
			path := writeTempFile(t, ".env", "MATCHKEY_SALT=from-dotenv\nMATCHKEY_ADDR=:6060\n")
			_ = os.Setenv("MATCHKEY_DOTENV", path)
			_ = os.Setenv("MATCHKEY_ADDR", ":5050")

			cfg, err := config.Load(ctx)

			convey.Convey("Then unset values come from the file and set ones win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Salt, convey.ShouldEqual, "from-dotenv")
				convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("MATCHKEY_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value is out of range", func() {
			_ = os.Setenv("MATCHKEY_HISTORY__BACKEND", "redis")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
