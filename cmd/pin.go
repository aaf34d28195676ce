package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trinity-catholic-media/versepin/internal/config"
	"github.com/trinity-catholic-media/versepin/internal/extract"
	"github.com/trinity-catholic-media/versepin/internal/format"
	"github.com/trinity-catholic-media/versepin/internal/intake"
	"github.com/trinity-catholic-media/versepin/internal/pinterest"
	"github.com/trinity-catholic-media/versepin/internal/publish"
	"github.com/trinity-catholic-media/versepin/internal/validate"
	"github.com/trinity-catholic-media/versepin/internal/verse"
)

func newPinCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "pin <image>",
		Short: "Extract a verse from an image and publish it as a pin",
		Long: `Runs the whole pipeline on a single image file: intake, AI extraction,
formatting, validation, and publish.

With --dry-run the extracted record is printed as YAML and nothing is
published, so the result can be inspected first. Records that fail the
completeness or confidence gates are never published; use the web interface
to review and correct them.`,
		Example: `  # Preview the extraction without publishing
  versepin pin verse.jpg --dry-run

  # Extract and publish in one go
  versepin pin verse.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runPin(cmd, cfg, args[0], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the extracted record without publishing")

	return cmd
}

func runPin(cmd *cobra.Command, cfg *config.Config, imagePath string, dryRun bool) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	asset, err := intake.LoadImage(data, http.DetectContentType(data), cfg.MaxImageBytes)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s (%s)\n", imagePath, intake.Describe(asset))

	extractor, err := extract.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	raw, err := extractor.Extract(cmd.Context(), asset)
	if err != nil {
		return err
	}

	record, err := format.New(cfg.CommunityLink).Format(raw)
	if err != nil {
		if payload, ok := verse.RawPayload(err); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Raw model output:\n%s\n", payload)
		}
		return err
	}

	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run, nothing published. Extracted record:")
		out, err := yaml.Marshal(record)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	}

	if ok, missing := validate.CheckCredentials(validate.Credentials{
		GeminiAPIKey:         cfg.GeminiAPIKey,
		PinterestAccessToken: cfg.PinterestAccessToken,
		PinterestBoardID:     cfg.PinterestBoardID,
	}); !ok {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}

	if !validate.Publishable(record, cfg.MinConfidence) {
		_, missing := validate.RecordComplete(record)
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing fields: %s", verse.ErrNotPublishable, strings.Join(missing, ", "))
		}
		return fmt.Errorf("%w: confidence %.2f below threshold %.2f; review it in the web interface",
			verse.ErrNotPublishable, record.Confidence, cfg.MinConfidence)
	}

	client := pinterest.NewClient(cfg.PinterestAccessToken, cfg.PublishTimeout)
	publisher := publish.New(client, publish.Options{
		BoardID:       cfg.PinterestBoardID,
		Link:          cfg.CommunityLink,
		MinConfidence: cfg.MinConfidence,
		MaxRetries:    uint64(cfg.PublishRetries),
		RetryBase:     cfg.RetryBase,
	})

	result, err := publisher.Publish(cmd.Context(), record, asset.Data, asset.MIME)
	if err != nil {
		return fmt.Errorf("publish failed after %d attempt(s): %w", result.Attempts, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pin created: %s (attempts: %d)\n", result.PinID, result.Attempts)
	return nil
}
