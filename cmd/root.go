package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/lekhan/internal/config"
	"github.com/lehigh-university-libraries/lekhan/internal/logging"
	"github.com/lehigh-university-libraries/lekhan/internal/report"
	"github.com/lehigh-university-libraries/lekhan/internal/storage"
	"github.com/lehigh-university-libraries/lekhan/internal/vault"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand once the root has run
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "lekhan",
		Short: "Document intelligence for scanned pages with a personal archive",
		Long: `Lekhan sends scanned document images to a vision-capable LLM and turns the reply
into a structured result: clean transcription, translation, named entities and sections.

Results are kept in a personal vault of the 50 most recent analyses, browsable as a
kanban board, and can be rendered as paginated A4 PDF reports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := a.logLevel
			if level == "" {
				level = os.Getenv("LOG_LEVEL")
			}
			if err := logging.Setup(os.Stderr, level); err != nil {
				return err
			}

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newAnalyzeCmd(a))
	cmd.AddCommand(newPromptCmd())
	cmd.AddCommand(newLanguagesCmd())
	cmd.AddCommand(newModesCmd())
	cmd.AddCommand(newVaultCmd(a))
	cmd.AddCommand(newReportCmd(a))

	return cmd
}

func (a *app) reportOptions() report.Options {
	return report.Options{FontPath: a.cfg.FontPath}
}

// openVault opens the configured backend and a session for the configured owner.
// The returned func closes both.
func (a *app) openVault(ctx context.Context) (*vault.Store, *vault.Session, func(), error) {
	backend, err := storage.Open(ctx, a.cfg.StorageOptions())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	store := vault.NewStore(backend)
	sess, err := store.Open(ctx, a.cfg.Owner)
	if err != nil {
		closeBackend(backend)
		return nil, nil, nil, fmt.Errorf("failed to open vault: %w", err)
	}

	closer := func() {
		sess.Close()
		closeBackend(backend)
	}
	return store, sess, closer, nil
}

func closeBackend(backend storage.Backend) {
	if err := backend.Close(); err != nil {
		slog.Warn("Failed to close storage", "err", err)
	}
}
