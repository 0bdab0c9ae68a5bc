package cli

import (
    "fmt"

    "github.com/spf13/cobra"
)

// Execute runs the apiview CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:           "apiview",
        Short:         "Render API review token files from code models and OpenAPI documents",
        Long:          "apiview turns an autorest code model or an OpenAPI/Swagger document into the navigable token file consumed by API review tools.",
        SilenceErrors: true,
        SilenceUsage:  true,
        RunE: func(cmd *cobra.Command, args []string) error {
            return cmd.Help()
        },
    }

    // Convert Cobra flag errors (like unknown flags) into friendly usage errors
    // that also show the command's help text.
    flagErr := func(c *cobra.Command, err error) error {
        return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
    }
    cmd.SetFlagErrorFunc(flagErr)

    cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
    cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
    cmd.PersistentFlags().Bool("debug", false, "Enable debug logging and dump the decoded model")

    for _, sub := range []*cobra.Command{newRenderCmd(), newPreviewCmd(), newInitCmd()} {
        sub.SetFlagErrorFunc(flagErr)
        cmd.AddCommand(sub)
    }

    return cmd
}
