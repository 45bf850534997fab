package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/board"
	"github.com/lehigh-university-libraries/lekhan/internal/export"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/vault"
	"github.com/spf13/cobra"
)

func newVaultCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Browse and manage archived analyses",
		Long: `The vault keeps the 50 most recent analyses of the configured owner, newest first.
Items move across a three column board: not-visited, in-progress and completed.`,
	}

	cmd.AddCommand(newVaultListCmd(a))
	cmd.AddCommand(newVaultBoardCmd(a))
	cmd.AddCommand(newVaultShowCmd(a))
	cmd.AddCommand(newVaultStatusCmd(a))
	cmd.AddCommand(newVaultDeleteCmd(a))
	cmd.AddCommand(newVaultPurgeCmd(a))
	cmd.AddCommand(newVaultExportCmd(a))
	cmd.AddCommand(newVaultImportCmd(a))

	return cmd
}

func newVaultListCmd(a *app) *cobra.Command {
	var (
		language string
		month    string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived items, optionally filtered by language and month",
		Example: `  # Everything
  lekhan vault list

  # Bengali documents archived in March
  lekhan vault list --language Bengali --month March`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, sess, closeVault, err := a.openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeVault()

			items, err := store.List(cmd.Context(), sess)
			if err != nil {
				return err
			}
			filtered := board.Filter(items, board.Criteria{Language: language, Month: month, Location: time.Local})

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(filtered)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Languages: %v\n", board.AvailableLanguages(items))
			fmt.Fprintf(out, "Months:    %v\n\n", board.AvailableMonths(items, time.Local))
			return printItems(out, filtered)
		},
	}

	cmd.Flags().StringVar(&language, "language", board.Any, "Source language name, or all")
	cmd.Flags().StringVar(&month, "month", board.Any, "Month name, or all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print items as JSON")

	return cmd
}

func newVaultBoardCmd(a *app) *cobra.Command {
	var (
		language string
		month    string
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show archived items grouped by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, sess, closeVault, err := a.openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeVault()

			items, err := store.List(cmd.Context(), sess)
			if err != nil {
				return err
			}
			filtered := board.Filter(items, board.Criteria{Language: language, Month: month, Location: time.Local})

			out := cmd.OutOrStdout()
			for _, col := range board.Columns(filtered) {
				fmt.Fprintf(out, "== %s (%d) ==\n", col.Label, len(col.Items))
				for _, item := range col.Items {
					fmt.Fprintf(out, "  %s  %s  [%s]\n", item.ID, item.Title, item.SourceLanguage)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", board.Any, "Source language name, or all")
	cmd.Flags().StringVar(&month, "month", board.Any, "Month name, or all")

	return cmd
}

func newVaultShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print one archived item as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, sess, closeVault, err := a.openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeVault()

			item, found, err := store.Get(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("vault item not found: %s", args[0])
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(item)
		},
	}
}

func newVaultStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move an archived item to not-visited, in-progress or completed",
		Example: `  lekhan vault status 01J9Z3K4V5W6X7Y8Z9A0B1C2D3 in-progress`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}

			store, sess, closeVault, err := a.openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeVault()

			return store.UpdateStatus(cmd.Context(), sess, args[0], status)
		},
	}
}

func newVaultDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove an archived item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, sess, closeVault, err := a.openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeVault()

			return store.Remove(cmd.Context(), sess, args[0])
		},
	}
}

func newVaultPurgeCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete the configured owner's whole archive",
		Example: `  # Export first, then wipe the archive
  lekhan vault export --out backup.yaml
  lekhan vault purge --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to purge the vault without --yes")
			}

			store, sess, closeVault, err := a.openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeVault()

			return store.Purge(cmd.Context(), sess)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting every archived item")

	return cmd
}

func newVaultExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the archive as YAML or parquet",
		Example: `  # YAML bundle
  lekhan vault export --out vault.yaml

  # Parquet rows for analysis tooling
  lekhan vault export --format parquet --out vault.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				f, err := export.FormatFromPath(out)
				if err != nil {
					return err
				}
				format = f
			}

			store, sess, closeVault, err := a.openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeVault()

			items, err := store.List(cmd.Context(), sess)
			if err != nil {
				return err
			}
			if err := export.WriteFile(out, format, sess.Owner(), items); err != nil {
				return err
			}
			slog.Info("Vault exported", "path", out, "format", format, "items", len(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Export format: yaml or parquet (default from --out extension)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newVaultImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge items from a YAML or parquet export into the archive",
		Long: `Imports items from an export file. Items are re-owned by the configured owner,
ids already in the archive are skipped, and only the 50 newest items are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}

			store, sess, closeVault, err := a.openVault(cmd.Context())
			if err != nil {
				return err
			}
			defer closeVault()

			added, err := store.Import(cmd.Context(), sess, items)
			if err != nil {
				return err
			}
			slog.Info("Vault imported", "path", args[0], "read", len(items), "added", added)
			return nil
		},
	}
}

func printItems(out io.Writer, items []models.VaultItem) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tLANGUAGE\tTITLE")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			item.ID,
			vault.CreatedTime(item).Format("2006-01-02 15:04"),
			item.Status.Normalize(),
			item.SourceLanguage,
			item.Title)
	}
	return w.Flush()
}
