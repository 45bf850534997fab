package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/lehigh-university-libraries/lekhan/internal/analysis"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	var (
		mode   string
		source string
		target string
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the instruction sent to the model for a mode",
		Example: `  # Show the full analysis instruction for Bengali into German
  lekhan prompt --mode master --source bn --target de`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models.ParseMode(mode)
			if err != nil {
				return err
			}
			if m == models.ModeLayout {
				return analysis.ErrReservedMode
			}
			src := models.LookupSource(source)
			tgt := models.LookupTarget(target)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), analysis.BuildPrompt(m, src.Name, tgt.Name))
			return err
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(models.ModeMaster), "Analysis mode")
	cmd.Flags().StringVarP(&source, "source", "s", "hi", "Source language code")
	cmd.Flags().StringVarP(&target, "target", "t", "en", "Target language code")

	return cmd
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the supported source and target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROLE\tCODE\tNAME\tNATIVE")
			for _, l := range models.SourceLanguages() {
				fmt.Fprintf(w, "source\t%s\t%s\t%s\n", l.Code, l.Name, l.Native)
			}
			for _, l := range models.TargetLanguages() {
				fmt.Fprintf(w, "target\t%s\t%s\t%s\n", l.Code, l.Name, l.Native)
			}
			return w.Flush()
		},
	}
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the analysis modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODE\tLABEL\tDESCRIPTION")
			for _, m := range models.Modes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Label, m.Description)
			}
			return w.Flush()
		},
	}
}
