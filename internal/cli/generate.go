package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Konosh93/open-ts/internal/compiler"
	"github.com/Konosh93/open-ts/internal/emitter"
	"github.com/Konosh93/open-ts/internal/logging"
	"github.com/Konosh93/open-ts/internal/spec"
	"github.com/Konosh93/open-ts/internal/tsast"
	"github.com/bndr/gotabulate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input        string
	Output       string
	ClientName   string
	IncludeTags  []string
	ExcludeTags  []string
	Methods      []string
	PathPatterns []string
	ConfigPath   string
	DryRun       bool
	Verbose      bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{ClientName: compiler.DefaultClientName}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [sourceFile] [destinationFile]",
		Short: "Compile an OpenAPI document into a TypeScript client module",
		Long: "Compile an OpenAPI 3.0 document (or Swagger 2.0, converted first) into one TypeScript module. " +
			"The source and destination can also come from the config file.",
		Example: strings.TrimSpace(`  opents generate openapi.yaml src/api.ts
  opents --config opents.yaml generate --client-name PetsAgent --dry-run`),
		Args: positionalArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd, args)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("client-name", "", "Name of the generated agent class (default "+compiler.DefaultClientName+")")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations using these HTTP methods")
	flags.StringSlice("paths", nil, "Only include paths matching these regular expressions")
	flags.Bool("dry-run", false, "Print the compiled operations without writing the destination")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command, args []string) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	file, path, err := configFromFlags(cmd.Flags().GetString)
	if err != nil {
		return nil, err
	}
	cfg.ConfigPath = path
	cfg.applyFile(file)

	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if len(args) > 1 {
		cfg.Output = args[1]
	}
	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *GenerateConfig) applyFile(f *FileConfig) {
	if f.Input != nil {
		c.Input = *f.Input
	}
	if f.Output != nil {
		c.Output = *f.Output
	}
	if f.ClientName != nil && *f.ClientName != "" {
		c.ClientName = *f.ClientName
	}
	if f.IncludeTags != nil {
		c.IncludeTags = f.IncludeTags
	}
	if f.ExcludeTags != nil {
		c.ExcludeTags = f.ExcludeTags
	}
	if f.Methods != nil {
		c.Methods = f.Methods
	}
	if f.PathPatterns != nil {
		c.PathPatterns = f.PathPatterns
	}
	if f.DryRun != nil {
		c.DryRun = *f.DryRun
	}
	if f.Verbose != nil {
		c.Verbose = *f.Verbose
	}
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("client-name") {
		value, err := flags.GetString("client-name")
		if err != nil {
			return err
		}
		cfg.ClientName = value
	}
	lists := []struct {
		flag string
		dst  *[]string
	}{
		{"include-tags", &cfg.IncludeTags},
		{"exclude-tags", &cfg.ExcludeTags},
		{"methods", &cfg.Methods},
		{"paths", &cfg.PathPatterns},
	}
	for _, l := range lists {
		if !flags.Changed(l.flag) {
			continue
		}
		value, err := flags.GetStringSlice(l.flag)
		if err != nil {
			return err
		}
		*l.dst = value
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Output = strings.TrimSpace(c.Output)
	c.ClientName = strings.TrimSpace(c.ClientName)
	if c.ClientName == "" {
		c.ClientName = compiler.DefaultClientName
	}
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.PathPatterns = sanitizeList(c.PathPatterns)
	methods := make([]string, 0, len(c.Methods))
	for _, m := range c.Methods {
		methods = append(methods, strings.ToLower(m))
	}
	c.Methods = sanitizeList(methods)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: <sourceFile> is required (set as argument or in the config file)")
	}
	if c.Output == "" && !c.DryRun {
		return newUsageError("generate: <destinationFile> is required (set as argument or in the config file)")
	}
	if !tsast.IsIdentifier(c.ClientName) {
		return newUsageError(fmt.Sprintf("generate: --client-name %q is not a valid TypeScript identifier", c.ClientName))
	}
	for _, m := range c.Methods {
		if _, ok := spec.ParseMethod(m); !ok {
			return newUsageError(fmt.Sprintf("generate: unsupported method %q in --methods", m))
		}
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	return nil
}

func (c *GenerateConfig) buildOptions() []spec.BuildOption {
	methods := make([]spec.HttpMethod, 0, len(c.Methods))
	for _, m := range c.Methods {
		if hm, ok := spec.ParseMethod(m); ok {
			methods = append(methods, hm)
		}
	}
	return []spec.BuildOption{
		spec.WithIncludeTags(c.IncludeTags),
		spec.WithExcludeTags(c.ExcludeTags),
		spec.WithMethods(methods),
		spec.WithPathPatterns(c.PathPatterns),
	}
}

func runGenerate(ctx context.Context, cfg *GenerateConfig, stdout io.Writer) error {
	log := logging.New(os.Stderr, cfg.Verbose)
	defer func() { _ = log.Sync() }()

	// 1) Load the spec (file or http/https URL) with validation and conversion
	src, err := spec.Load(ctx, cfg.Input, spec.WithLogger(log))
	if err != nil {
		return specUsageError(err)
	}

	// 2) Normalize with the operation filters
	doc, err := spec.Normalize(src.Doc, src.Order, cfg.buildOptions()...)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	// 3) Compile; any error is fatal and nothing is written
	res, err := compiler.Compile(doc, compiler.Options{ClientName: cfg.ClientName, Logger: log})
	if err != nil {
		return wrapUsageError(fmt.Sprintf("compile %s: %v", cfg.Input, err), err)
	}

	// 4) Write the module
	planned := &emitter.PlannedFile{Path: "(no destination)", Size: len(res.Source)}
	if cfg.Output != "" {
		planned, err = emitter.Emit(ctx, []byte(res.Source), emitter.Options{Path: cfg.Output, DryRun: cfg.DryRun})
		if err != nil {
			return wrapOutputError(err, cfg.Output)
		}
	}
	if cfg.DryRun {
		fmt.Fprintf(stdout, "Planned write to %s (%d bytes, %d operations):\n", planned.Path, planned.Size, len(res.Operations))
		fmt.Fprint(stdout, operationTable(res.Operations))
		return nil
	}
	fmt.Fprintf(stdout, "Wrote %s (%d operations)\n", planned.Path, len(res.Operations))
	return nil
}

func operationTable(ops []compiler.OperationSummary) string {
	if len(ops) == 0 {
		return "(no operations)\n"
	}
	rows := make([][]any, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, []any{op.Method, op.Path, op.Name, op.Response})
	}
	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"METHOD", "PATH", "METHOD NAME", "RESPONSE"})
	t.SetAlign("left")
	return t.Render("simple")
}

// specUsageError maps structured spec errors into friendly messages.
func specUsageError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return wrapUsageError(msg, err)
}

func wrapOutputError(err error, dest string) error {
	// Provide clearer guidance for common FS failures.
	if abs, aerr := filepath.Abs(dest); aerr == nil {
		dest = abs
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "directory") {
		return wrapUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different destination.", dest, msg), err)
	}
	return err
}
