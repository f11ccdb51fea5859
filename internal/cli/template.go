package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/matchkey/internal/domain/mailto"
)

// Template preview needs no salt, so it works before a deployment is keyed.
func newTemplateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Work with the email template",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "preview",
		Short: "Render the configured template with sample values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := e.cfg.TemplateBody()
			if err != nil {
				return err
			}
			t := mailto.NewTemplate(body)

			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(map[string]any{"template": t.Body(), "preview": t.Preview(), "has_key": t.HasKey()})
			}
			p.line(t.Preview())
			if !t.HasKey() {
				e.log.Warn(cmd.Context(), "email template has no {KEY} placeholder; requests cannot be verified")
			}
			return nil
		},
	})
	return cmd
}
