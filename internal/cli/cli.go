// Package cli implements the matchkey command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/matchkey/internal/adapters/qrcode"
	"github.com/okian/matchkey/internal/adapters/repository"
	service "github.com/okian/matchkey/internal/app"
	"github.com/okian/matchkey/internal/config"
	"github.com/okian/matchkey/internal/domain/keying"
	"github.com/okian/matchkey/pkg/logger"
)

// ExitError carries a process exit status without an error message, e.g.
// for a verification that ran fine but did not match.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}

// env is what every subcommand needs once configuration is loaded.
type env struct {
	cfg *config.Config
	log logger.Logger
}

// NewRootCommand returns the root command with all subcommands wired in.
func NewRootCommand(version string) *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:           "matchkey",
		Short:         "Generate and verify referee payment keys",
		Long:          "Derive short security keys bound to a match (teams, date, time), deliver them as a mailto QR code, and verify them later from re-typed details.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				if err := os.Setenv(config.EnvConfig, path); err != nil {
					return err
				}
			}
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat, Writer: cmd.ErrOrStderr()}); err != nil {
				return err
			}
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
				_ = logger.SetLevelString("info")
			}
			e.cfg = cfg
			e.log = logger.Get()
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "YAML config file (or "+config.EnvConfig+" env)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table or json")

	cmd.AddCommand(
		newServeCmd(e),
		newGenerateCmd(e),
		newVerifyCmd(e),
		newHistoryCmd(e),
		newTemplateCmd(e),
	)
	return cmd
}

// newService assembles a Service from the loaded configuration. The caller
// must Close it.
func (e *env) newService(ctx context.Context) (*service.Service, error) {
	salt, err := e.cfg.SaltBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: set %sSALT", err, config.EnvPrefix)
	}
	deriver, err := keying.NewDeriver(salt)
	if err != nil {
		return nil, err
	}
	recovery, err := qrcode.ParseRecovery(e.cfg.QR.Recovery)
	if err != nil {
		return nil, err
	}
	body, err := e.cfg.TemplateBody()
	if err != nil {
		return nil, err
	}
	store, err := repository.Open(ctx, e.cfg.History.Backend, e.cfg.History.Path,
		repository.WithMaxEntries(e.cfg.History.MaxEntries))
	if err != nil {
		return nil, fmt.Errorf("open %s history: %w", e.cfg.History.Backend, err)
	}

	svc, err := service.New(
		service.WithDeriver(deriver),
		service.WithStore(store),
		service.WithTemplate(body),
		service.WithRecipient(e.cfg.Recipient),
		service.WithSubject(e.cfg.Subject),
		service.WithEncoder(qrcode.New(qrcode.WithSize(e.cfg.QR.Size), qrcode.WithRecovery(recovery))),
		service.WithLogger(e.log.Named("service")),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if !svc.Template().HasKey() {
		e.log.Warn(ctx, "email template has no {KEY} placeholder; requests cannot be verified")
	}
	e.log.Debug(ctx, "service ready",
		logger.String("salt_id", svc.SaltID()),
		logger.String("history_backend", e.cfg.History.Backend),
	)
	return svc, nil
}
