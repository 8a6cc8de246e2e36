package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Konosh93/open-ts/internal/emitter"
	"github.com/Konosh93/open-ts/internal/enumscan"
	"github.com/Konosh93/open-ts/internal/logging"
	"github.com/bndr/gotabulate"
	"github.com/spf13/cobra"
)

// defaultEnumsFile is written when the destination is an existing directory.
const defaultEnumsFile = "enums.yaml"

// ConvertEnumsConfig captures the options for the convert-enums command.
type ConvertEnumsConfig struct {
	Input      string
	Output     string
	ConfigPath string
	DryRun     bool
	Verbose    bool
}

var convertEnumsRunner = runConvertEnums

func newConvertEnumsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert-enums [sourceDir] [destination]",
		Short: "Extract TypeScript enums into OpenAPI component schemas",
		Long: "Scan a directory of TypeScript files for string and number enums (enum declarations and " +
			"`as const` object literals) and write them as components.schemas in YAML, or JSON for .json destinations.",
		Example: strings.TrimSpace(`  opents convert-enums src/enums openapi/enums.yaml
  opents convert-enums src --dry-run`),
		Args: positionalArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &ConvertEnumsConfig{}
			file, path, err := configFromFlags(cmd.Flags().GetString)
			if err != nil {
				return err
			}
			cfg.ConfigPath = path
			if file.EnumsInput != nil {
				cfg.Input = *file.EnumsInput
			}
			if file.EnumsOutput != nil {
				cfg.Output = *file.EnumsOutput
			}
			if file.DryRun != nil {
				cfg.DryRun = *file.DryRun
			}
			if file.Verbose != nil {
				cfg.Verbose = *file.Verbose
			}
			if len(args) > 0 {
				cfg.Input = args[0]
			}
			if len(args) > 1 {
				cfg.Output = args[1]
			}
			if cmd.Flags().Changed("dry-run") {
				if cfg.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("verbose") {
				if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
					return err
				}
			}
			cfg.Input = strings.TrimSpace(cfg.Input)
			cfg.Output = strings.TrimSpace(cfg.Output)
			if cfg.Input == "" {
				return newUsageError("convert-enums: <sourceDir> is required (set as argument or enumsInput in the config file)")
			}
			if cfg.Output == "" && !cfg.DryRun {
				return newUsageError("convert-enums: <destination> is required (set as argument or enumsOutput in the config file)")
			}
			return convertEnumsRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Bool("dry-run", false, "List the enums found without writing the destination")
	return cmd
}

func runConvertEnums(ctx context.Context, cfg *ConvertEnumsConfig, stdout io.Writer) error {
	log := logging.New(os.Stderr, cfg.Verbose)
	defer func() { _ = log.Sync() }()

	enums, err := enumscan.New(log).ScanDir(ctx, cfg.Input)
	if err != nil {
		return wrapUsageError(fmt.Sprintf("convert-enums: %v", err), err)
	}
	if cfg.DryRun {
		fmt.Fprintf(stdout, "Found %d enums in %s:\n", len(enums), cfg.Input)
		fmt.Fprint(stdout, enumTable(enums))
		return nil
	}

	data, err := enumscan.Render(enums, enumscan.FormatFor(cfg.Output))
	if err != nil {
		return fmt.Errorf("convert-enums: render: %w", err)
	}
	planned, err := emitter.Emit(ctx, data, emitter.Options{Path: cfg.Output, DefaultName: defaultEnumsFile})
	if err != nil {
		return wrapOutputError(err, cfg.Output)
	}
	fmt.Fprintf(stdout, "Wrote %d enums to %s\n", len(enums), planned.Path)
	return nil
}

func enumTable(enums []enumscan.Enum) string {
	if len(enums) == 0 {
		return "(no enums)\n"
	}
	rows := make([][]any, 0, len(enums))
	for _, e := range enums {
		rows = append(rows, []any{e.Name, e.Type, strconv.Itoa(len(e.Values)), e.File})
	}
	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"NAME", "TYPE", "VALUES", "FILE"})
	t.SetAlign("left")
	return t.Render("simple")
}
