package cli

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "github.com/spf13/cobra"

    "github.com/mark3labs/apiview/internal/output"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

const defaultConfigFile = "apiview.yaml"

var initRunner = runInit

func newInitCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:   "init",
        Short: "Scaffold a sample apiview configuration file",
        Long:  "Scaffold a commented apiview configuration file that documents available options.",
        RunE: func(cmd *cobra.Command, args []string) error {
            out, err := cmd.Flags().GetString("out")
            if err != nil {
                return err
            }
            force, err := cmd.Flags().GetBool("force")
            if err != nil {
                return err
            }
            verbose, err := cmd.Flags().GetBool("verbose")
            if err != nil {
                return err
            }
            cfg := &InitConfig{
                OutputPath: out,
                Force:      force,
                Verbose:    verbose,
            }
            return initRunner(withStreams(cmd), cfg)
        },
    }

    cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
    cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

    return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
    stdout, stderr := streams(ctx)
    log := newLogger(stderr, cfg.Verbose, false)

    out := strings.TrimSpace(cfg.OutputPath)
    if out == "" {
        out = defaultConfigFile
    }
    absPath, err := filepath.Abs(out)
    if err != nil {
        return fmt.Errorf("init: resolve output path: %w", err)
    }

    if st, err := os.Stat(absPath); err == nil && !cfg.Force {
        if st.Mode().IsRegular() {
            return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
        }
    }

    content := strings.TrimSpace(sampleConfigYAML) + "\n"
    if err := output.WriteFileAtomic(absPath, []byte(content), 0o644); err != nil {
        return newUsageError(fmt.Sprintf("init: %v\nHint: choose a different --out or check directory permissions.", err))
    }
    log.Info("wrote sample config", "path", absPath)
    fmt.Fprintf(stdout, "Wrote sample config to %s\n", absPath)
    return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# apiview configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL to the code model, OpenAPI 3 or Swagger 2 document.
# input: ./code-model.yaml

# Output JSON file. "-" or empty writes to stdout.
# out: ./petstore.json

# Also write a plain-text rendering.
# textOut: ./petstore.txt

# Rendering flavor (llc|protocol). Defaults to llc.
# flavor: llc

# Override the package name taken from info.title.
# packageName: PetStore

# Override the endpoint parameter name.
# endpointName: endpoint

# Credential shown in the client constructor.
# credentialName: Credential
# credentialType: AzureCredential

# Only render these operation groups (comma-separated or list).
# Use <default> for operations without a group.
# includeGroups: [Pets]

# Skip these operation groups.
# excludeGroups: [Admin]

# Legacy body templates keyed <group>.<operation>, each with request/response.
# bodyTemplates: ./templates.yaml

# Indent the JSON output.
# pretty: false

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite an existing output file.
# force: false

# Enable verbose or debug logging.
# verbose: false
# debug: false
`
