package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		out      string
		markdown bool
	)

	cmd := &cobra.Command{
		Use:   "report ID",
		Short: "Render an archived item as a PDF report",
		Long: `Renders the structured result of an archived item as a paginated A4 PDF:
a header with the author and generation time, the title, each section and the
translation block. Use --markdown to print a Markdown version instead.

Set font_path in the config (or LEKHAN_FONT) to a TTF covering your scripts to
render Devanagari, Tamil, Arabic and other non-Latin text.`,
		Example: `  # Write a PDF for an archived item
  lekhan report 01J9Z3K4V5W6X7Y8Z9A0B1C2D3 --out deed.pdf

  # Print the Markdown version
  lekhan report 01J9Z3K4V5W6X7Y8Z9A0B1C2D3 --markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, sess, closeVault, err := a.openVault(ctx)
			if err != nil {
				return err
			}
			defer closeVault()

			item, found, err := store.Get(ctx, sess, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("vault item not found: %s", args[0])
			}

			if markdown {
				_, err := fmt.Fprint(cmd.OutOrStdout(), report.Markdown(item))
				return err
			}

			if out == "" {
				out = fmt.Sprintf("lekhan-report-%s.pdf", item.ID)
			}
			return writeReport(out, item.Result, a.cfg.Owner.Name, a.reportOptions())
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output PDF path (default lekhan-report-<ID>.pdf)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print Markdown to stdout instead of writing a PDF")

	return cmd
}

// writeReport renders result to path and logs the page count of the written document
func writeReport(path string, result models.StructuredResult, author string, opts report.Options) error {
	data, err := report.RenderBytes(result, report.Meta{
		Author:      author,
		GeneratedAt: time.Now(),
	}, opts)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	info, err := report.Inspect(data)
	if err != nil {
		return fmt.Errorf("failed to validate report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	slog.Info("Report written", "path", path, "pages", info.Pages, "bytes", info.Bytes)
	return nil
}
