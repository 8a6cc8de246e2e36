package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the opents CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "opents",
		Short:         "Generate a typed TypeScript API client from an OpenAPI document",
		Long:          "opents compiles an OpenAPI 3.0 document into a single TypeScript module with types, class-validator classes and an API agent class.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

	for _, sub := range []*cobra.Command{cmd, newGenerateCmd(), newConvertEnumsCmd(), newInitCmd()} {
		// Convert Cobra flag errors (like unknown flags) into friendly usage
		// errors that also show the command's help text.
		sub.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
			return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
		})
		if sub != cmd {
			cmd.AddCommand(sub)
		}
	}
	return cmd
}

// positionalArgs accepts up to n arguments and reports extras as usage errors.
func positionalArgs(n int) cobra.PositionalArgs {
	return func(c *cobra.Command, args []string) error {
		if len(args) > n {
			return newUsageError(fmt.Sprintf("%s: accepts at most %d arguments, received %d\n\n%s", c.Name(), n, len(args), c.UsageString()))
		}
		return nil
	}
}
