package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Konosh93/open-ts/internal/emitter"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "opents.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample opents configuration file",
		Long:  "Scaffold a commented opents configuration file that documents available options.",
		Args:  positionalArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{OutputPath: out, Force: force}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig, stdout io.Writer) error {
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
	planned, err := emitter.Emit(ctx, []byte(content), emitter.Options{Path: absPath, DefaultName: defaultConfigFile})
	if err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write %s: %v\nHint: choose a different --out or check directory permissions.", absPath, err))
	}
	fmt.Fprintf(stdout, "Wrote sample config to %s\n", planned.Path)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# opents configuration (YAML)
# All fields are optional. Positional arguments and flags override config values.

# Path or URL to the OpenAPI 3.0 or Swagger 2.0 document (http/https or local file).
# input: ./openapi.yaml

# Destination of the generated TypeScript module.
# output: ./src/api.ts

# Name of the default-exported agent class.
# clientName: APIAgent

# Only include operations with these tags (comma-separated or list).
# includeTags: [public,read]

# Exclude operations with these tags (comma-separated or list).
# excludeTags: [internal]

# Only include operations using these HTTP methods.
# methods: [get,post]

# Only include paths matching these regular expressions.
# paths: ['^/pets']

# Print what would be generated without writing files.
# dryRun: false

# Enable verbose logging.
# verbose: false

# convert-enums: directory of TypeScript sources and destination file.
# enumsInput: ./src/enums
# enumsOutput: ./openapi/enums.yaml
`
