package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okian/matchkey/internal/adapters/qrcode"
	"github.com/okian/matchkey/internal/domain/keying"
)

func newGenerateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the payment request QR code for a match",
		Example: `  matchkey generate --team1 Lions --team2 Tigers --date 01/06/2025 --time 18h30 --out .
  matchkey generate --team1 Lions --team2 Tigers --print-mailto`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := e.newService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			gen, err := svc.Generate(ctx, matchFromFlags(cmd))
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("out")
			var written string
			if out != "" {
				written = out
				if info, err := os.Stat(out); err == nil && info.IsDir() {
					written = filepath.Join(out, gen.Filename)
				}
				if err := qrcode.SavePNG(written, gen.PNG); err != nil {
					return err
				}
			}

			p := newPrinter(cmd)
			printMailto, _ := cmd.Flags().GetBool("print-mailto")
			if p.isJSON() {
				v := map[string]any{
					"id":         gen.Entry.ID,
					"key_hint":   keying.Mask(gen.Key),
					"filename":   gen.Filename,
					"date":       gen.Entry.CanonicalDate,
					"time":       gen.Entry.CanonicalTime,
					"salt_id":    gen.Entry.SaltID,
					"created_at": gen.Entry.CreatedAt,
				}
				if written != "" {
					v["written"] = written
				}
				if printMailto {
					v["mailto"] = gen.Mailto
				}
				return p.json(v)
			}

			pairs := [][2]string{
				{"ID", gen.Entry.ID},
				{"Match", gen.Entry.Team1 + " vs " + gen.Entry.Team2},
				{"Date", gen.Entry.CanonicalDate},
				{"Time", gen.Entry.CanonicalTime},
				{"Key", keying.Mask(gen.Key)},
			}
			if written != "" {
				pairs = append(pairs, [2]string{"QR", written})
			}
			p.kv(pairs)
			if printMailto {
				p.line(gen.Mailto)
			}
			if show, _ := cmd.Flags().GetBool("qr"); show {
				ascii, err := svc.Encoder().ASCII(gen.Mailto)
				if err != nil {
					return err
				}
				p.line(ascii)
			}
			return nil
		},
	}

	addMatchFlags(cmd)
	cmd.Flags().String("out", "", "write the QR PNG to this file, or into this directory under its suggested name")
	cmd.Flags().Bool("print-mailto", false, "print the mailto link (it contains the key)")
	cmd.Flags().Bool("qr", false, "draw the QR code in the terminal")
	return cmd
}
