package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/analysis"
	"github.com/lehigh-university-libraries/lekhan/internal/images"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/vault"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		mode       string
		source     string
		target     string
		save       bool
		replaceID  string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "analyze [FILE|URL]",
		Short: "Analyze a scanned document image",
		Long: `Sends a document image to the configured provider with the instruction for the
chosen mode and prints the structured result as JSON.

Successful results are archived in the vault unless --save=false. With --replace the
archived item is re-analyzed (using its own image when FILE is omitted) and swapped
in place, keeping its id and board status.`,
		Example: `  # Full analysis of a Hindi deed, translated to English
  lekhan analyze deed.jpg

  # Transcribe a handwritten Tamil letter into French without archiving it
  lekhan analyze letter.png --mode handwritten --source ta --target fr --save=false

  # Re-run an archived item in translation mode and write a PDF report
  lekhan analyze --replace 01J9Z3K4V5W6X7Y8Z9A0B1C2D3 --mode translation --report deed.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(args) == 0 && replaceID == "" {
				return errors.New("a FILE is required unless --replace is given")
			}

			analysisMode, err := models.ParseMode(mode)
			if err != nil {
				return err
			}

			store, sess, closeVault, err := a.openVault(ctx)
			if err != nil {
				return err
			}
			defer closeVault()

			var existing *models.VaultItem
			if replaceID != "" {
				item, found, err := store.Get(ctx, sess, replaceID)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("vault item not found: %s", replaceID)
				}
				existing = &item
			}

			image, mimeType, err := loadImage(ctx, args, existing)
			if err != nil {
				return err
			}

			sourceLang, targetLang := resolveLanguages(cmd, source, target, existing)

			service, err := analysis.NewService(a.cfg.ProviderSettings())
			if err != nil {
				return fmt.Errorf("failed to create analysis service: %w", err)
			}

			result, err := service.Analyze(ctx, analysis.Request{
				Image:          image,
				MIMEType:       mimeType,
				Mode:           analysisMode,
				SourceLanguage: sourceLang,
				TargetLanguage: targetLang,
			})
			if err != nil {
				return err
			}
			if d, ok := result.Outcome.(analysis.Degraded); ok {
				slog.Warn("Response was not structured, keeping raw text", "length", len(d.RawText))
			}

			item := vault.NewItem(time.Now(), result.Result, image, mimeType, sourceLang, targetLang)
			switch {
			case existing != nil:
				item.ID = existing.ID
				item.Status = existing.Status
				if err := store.Replace(ctx, sess, item); err != nil {
					return err
				}
				slog.Info("Archived item re-analyzed", "id", item.ID)
			case save:
				if item, err = store.Append(ctx, sess, item); err != nil {
					return err
				}
				slog.Info("Result archived", "id", item.ID, "title", item.Title)
			}

			if reportPath != "" {
				if err := writeReport(reportPath, item.Result, a.cfg.Owner.Name, a.reportOptions()); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(item.Result)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(models.ModeMaster), "Analysis mode (base, handwritten, translation, entity, master)")
	cmd.Flags().StringVarP(&source, "source", "s", "hi", "Source language code")
	cmd.Flags().StringVarP(&target, "target", "t", "en", "Target language code")
	cmd.Flags().BoolVar(&save, "save", true, "Archive the result in the vault")
	cmd.Flags().StringVar(&replaceID, "replace", "", "Re-analyze this archived item and replace it in place")
	cmd.Flags().StringVar(&reportPath, "report", "", "Also write a PDF report to this path")

	return cmd
}

// loadImage reads FILE (a path or http(s) URL), or falls back to the archived item's own image
func loadImage(ctx context.Context, args []string, existing *models.VaultItem) ([]byte, string, error) {
	if len(args) == 0 {
		data, err := vault.DecodeImage(*existing)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode archived image: %w", err)
		}
		return data, existing.SourceImage.MIMEType, nil
	}

	img, err := images.NewFetcher().Load(ctx, args[0])
	if err != nil {
		return nil, "", err
	}
	slog.Debug("Image loaded", "source", args[0], "type", img.MIMEType, "md5", img.MD5)
	return img.Data, img.MIMEType, nil
}

// resolveLanguages prefers explicit flags, then the archived item's languages, then the defaults
func resolveLanguages(cmd *cobra.Command, source, target string, existing *models.VaultItem) (models.Language, models.Language) {
	sourceLang := models.LookupSource(source)
	targetLang := models.LookupTarget(target)
	if existing == nil {
		return sourceLang, targetLang
	}
	if !cmd.Flags().Changed("source") {
		if l, ok := models.SourceByName(existing.SourceLanguage); ok {
			sourceLang = l
		}
	}
	if !cmd.Flags().Changed("target") {
		if l, ok := models.TargetByName(existing.TargetLanguage); ok {
			targetLang = l
		}
	}
	return sourceLang, targetLang
}
