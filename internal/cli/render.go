package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/apiview/internal/codemodel"
	"github.com/mark3labs/apiview/internal/output"
	"github.com/mark3labs/apiview/internal/view"
)

var renderRunner = runRender

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an API review token file from a code model or OpenAPI document",
		Long: "Render an API review token file (JSON) from an autorest code model, an OpenAPI 3 " +
			"document or a Swagger 2 document. Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  apiview render --input code-model.yaml --out petstore.json
  apiview --config apiview.yaml render --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveRenderConfig(cmd)
			if err != nil {
				return err
			}
			return renderRunner(withStreams(cmd), cfg)
		},
	}

	flags := cmd.Flags()
	addSourceFlags(flags)
	flags.String("out", "", "Output JSON file; \"-\" or empty writes to stdout")
	flags.String("text-out", "", "Also write a plain-text rendering to this file")
	flags.Bool("pretty", false, "Indent the JSON output")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

// addSourceFlags registers the flags shared by every command that builds a
// document.
func addSourceFlags(flags *pflag.FlagSet) {
	flags.String("input", "", "Path or URL to the code model or OpenAPI/Swagger document")
	flags.String("flavor", "", fmt.Sprintf("Rendering flavor (%s); defaults to llc", strings.Join(view.Flavors(), "|")))
	flags.String("package-name", "", "Override the package name (defaults to info.title)")
	flags.String("endpoint-name", "", "Override the endpoint parameter name")
	flags.String("credential-name", "", "Credential parameter name in the client constructor")
	flags.String("credential-type", "", "Credential type in the client constructor")
	flags.StringSlice("include-groups", nil, "Only render these operation groups")
	flags.StringSlice("exclude-groups", nil, "Skip these operation groups")
	flags.String("body-templates", "", "YAML/JSON file of legacy body templates keyed <group>.<operation>")
}

func resolveRenderConfig(cmd *cobra.Command) (*RenderConfig, error) {
	cfg := defaultRenderConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyRenderConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyRenderFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyRenderFlagOverrides copies only flags the user set so config file
// values survive. Flags a command does not define are never Changed.
func applyRenderFlagOverrides(flags *pflag.FlagSet, cfg *RenderConfig) error {
	strs := map[string]*string{
		"input":           &cfg.Input,
		"out":             &cfg.Out,
		"text-out":        &cfg.TextOut,
		"flavor":          &cfg.Flavor,
		"package-name":    &cfg.PackageName,
		"endpoint-name":   &cfg.EndpointName,
		"credential-name": &cfg.CredentialName,
		"credential-type": &cfg.CredentialType,
		"body-templates":  &cfg.BodyTemplates,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	lists := map[string]*[]string{
		"include-groups": &cfg.IncludeGroups,
		"exclude-groups": &cfg.ExcludeGroups,
	}
	for name, dst := range lists {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeNames(value)
	}

	bools := map[string]*bool{
		"dry-run": &cfg.DryRun,
		"force":   &cfg.Force,
		"pretty":  &cfg.Pretty,
		"verbose": &cfg.Verbose,
		"debug":   &cfg.Debug,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	return nil
}

func (c *RenderConfig) validate() error {
	if c.Input == "" {
		return newUsageError("--input is required (set via flag or config file)")
	}
	if c.Flavor == "" {
		c.Flavor = view.DefaultFlavor
	}
	if _, err := view.LookupFlavor(c.Flavor); err != nil {
		return newUsageError(fmt.Sprintf("unsupported --flavor %q (allowed: %s)", c.Flavor, strings.Join(view.Flavors(), ", ")))
	}
	if overlap := intersect(c.IncludeGroups, c.ExcludeGroups); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("include/exclude groups overlap: %s", strings.Join(overlap, ", ")))
	}
	return nil
}

func runRender(ctx context.Context, cfg *RenderConfig) error {
	stdout, stderr := streams(ctx)
	log := newLogger(stderr, cfg.Verbose, cfg.Debug)

	doc, err := buildDocument(ctx, cfg, log, stderr)
	if err != nil {
		return err
	}

	res, err := output.Write(ctx, doc, output.Options{
		OutFile:  cfg.Out,
		TextFile: cfg.TextOut,
		Stdout:   stdout,
		Force:    cfg.Force,
		DryRun:   cfg.DryRun,
		Pretty:   cfg.Pretty,
	})
	if err != nil {
		return wrapOutputError(err)
	}
	if cfg.DryRun {
		fmt.Fprintf(stdout, "Planned writes (%d files):\n", len(res.Planned))
		for _, p := range res.Planned {
			fmt.Fprintf(stdout, "- %s (%d bytes)\n", p.Path, p.Size)
		}
	}
	log.Info("rendered document", "package", doc.PackageName, "tokens", len(doc.Tokens))
	return nil
}

// buildDocument loads cfg.Input and renders it. The returned document has
// passed its id consistency check.
func buildDocument(ctx context.Context, cfg *RenderConfig, log *slog.Logger, debugOut io.Writer) (*view.Document, error) {
	model, err := codemodel.Load(ctx, cfg.Input, codemodel.WithLogger(log))
	if err != nil {
		return nil, mapModelError(err)
	}
	if cfg.Debug {
		spew.Fdump(debugOut, model.Info, len(model.OperationGroups))
	}

	flavor, err := view.LookupFlavor(cfg.Flavor)
	if err != nil {
		return nil, newUsageError(err.Error())
	}
	templates, err := loadBodyTemplates(cfg.BodyTemplates)
	if err != nil {
		return nil, err
	}
	client, err := view.FromCodeModel(model, view.Options{
		Flavor:         flavor,
		PackageName:    cfg.PackageName,
		EndpointName:   cfg.EndpointName,
		CredentialName: cfg.CredentialName,
		CredentialType: cfg.CredentialType,
		IncludeGroups:  cfg.IncludeGroups,
		ExcludeGroups:  cfg.ExcludeGroups,
		BodyTemplates:  templates,
		Logger:         log,
	})
	if err != nil {
		return nil, mapModelError(err)
	}
	doc, err := client.Render()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := doc.Check(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return doc, nil
}

// loadBodyTemplates reads the --body-templates file. An empty path yields no
// templates.
func loadBodyTemplates(path string) (map[string]view.BodyTemplate, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read body templates %q: %v", path, err))
	}
	var templates map[string]view.BodyTemplate
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, newUsageError(fmt.Sprintf("parse body templates %q: %v", path, err))
	}
	return templates, nil
}

// mapModelError turns structured input errors into friendly usage errors.
func mapModelError(err error) error {
	var le *codemodel.LoadError
	if errors.As(err, &le) {
		msg := fmt.Sprintf("input: %s", le.Message)
		if le.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, le.Location)
		}
		if le.Cause != nil {
			var me *codemodel.ModelError
			if errors.As(le.Cause, &me) {
				msg = fmt.Sprintf("%s\nField: %s", msg, me.Path)
			}
		}
		return newUsageError(msg)
	}
	var me *codemodel.ModelError
	if errors.As(err, &me) {
		return newUsageError(fmt.Sprintf("input: %v", me))
	}
	if errors.Is(err, view.ErrShapeMismatch) {
		return newUsageError(err.Error())
	}
	return err
}

func wrapOutputError(err error) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") {
		return newUsageError(fmt.Sprintf("output error: %s\nHint: choose a different --out or use --force when appropriate.", msg))
	}
	return err
}

type streamsKey struct{}

type streamPair struct {
	out, err io.Writer
}

// withStreams carries the command's writers to runners, which only receive a
// context and a config.
func withStreams(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, streamsKey{}, streamPair{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()})
}

func streams(ctx context.Context) (io.Writer, io.Writer) {
	if p, ok := ctx.Value(streamsKey{}).(streamPair); ok {
		return p.out, p.err
	}
	return os.Stdout, os.Stderr
}
