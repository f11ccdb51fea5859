package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/matchkey/internal/domain/keying"
)

// Exit statuses of the verify command.
const (
	exitInvalid   = 1
	exitMalformed = 2
)

func newVerifyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a key against the details of a match",
		Long:  "Check a key against the details of a match. Exit status is 0 for a valid key, 1 for a wrong key and 2 for text that is not a key.",
		Example: `  matchkey verify --team1 tigers --team2 LIONS --date 2025-06-01 --time 18:30 --key ABCDE-FGHJK`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := e.newService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			key, _ := cmd.Flags().GetString("key")
			v, err := svc.Verify(ctx, matchFromFlags(cmd), key)
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			if p.isJSON() {
				out := map[string]any{
					"outcome": v.Outcome.String(),
					"valid":   v.Valid(),
					"date":    v.CanonicalDate,
					"time":    v.CanonicalTime,
				}
				if !v.Valid() {
					out["expected_hint"] = v.MaskedExpected
				}
				if err := p.json(out); err != nil {
					return err
				}
			} else {
				pairs := [][2]string{
					{"Outcome", v.Outcome.String()},
					{"Date", v.CanonicalDate},
					{"Time", v.CanonicalTime},
				}
				if !v.Valid() {
					pairs = append(pairs, [2]string{"Expected", v.MaskedExpected})
				}
				p.kv(pairs)
			}

			switch v.Outcome {
			case keying.OutcomeValid:
				return nil
			case keying.OutcomeMalformed:
				return &ExitError{Code: exitMalformed}
			default:
				return &ExitError{Code: exitInvalid}
			}
		},
	}

	addMatchFlags(cmd)
	cmd.Flags().String("key", "", "key to check; case, spaces and dashes are ignored")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
