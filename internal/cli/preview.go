package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/apiview/internal/output"
)

// PreviewConfig is RenderConfig plus the terminal options of preview.
type PreviewConfig struct {
	RenderConfig
	Color bool
}

var previewRunner = runPreview

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the rendered API view as text",
		Long:  "Render the API view and print it as it would appear in the review tool, optionally coloured.",
		Example: strings.TrimSpace(`  apiview preview --input openapi.yaml
  apiview preview --input code-model.yaml --color --include-groups Pets`),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := resolveRenderConfig(cmd)
			if err != nil {
				return err
			}
			color, err := cmd.Flags().GetBool("color")
			if err != nil {
				return err
			}
			return previewRunner(withStreams(cmd), &PreviewConfig{RenderConfig: *rc, Color: color})
		},
	}

	addSourceFlags(cmd.Flags())
	cmd.Flags().Bool("color", false, "Colour tokens by kind")
	return cmd
}

func runPreview(ctx context.Context, cfg *PreviewConfig) error {
	stdout, stderr := streams(ctx)
	log := newLogger(stderr, cfg.Verbose, cfg.Debug)

	doc, err := buildDocument(ctx, &cfg.RenderConfig, log, stderr)
	if err != nil {
		return err
	}
	text := output.Text(doc.Tokens)
	if cfg.Color {
		text = output.StyledText(doc.Tokens, output.DefaultTheme())
	}
	_, err = fmt.Fprint(stdout, text)
	return err
}
