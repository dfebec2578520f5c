package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/batch"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/checks"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/inputs"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/report"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/sbom"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/utils"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries a process exit code out of a command. A nil err means the
// command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageError(format string, args ...interface{}) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and maps the outcome to an exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}

	// flag and argument parsing errors from cobra
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitUsage
}

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"retail":      "retail",
	"layout":      "layout",
	"recursive":   "recursive",
	"verbose":     "verbose",
	"workers":     "workers",
	"format":      "output_format",
	"sbom":        "sbom.enabled",
	"sbom-format": "sbom.format",
	"sbom-dir":    "sbom.output_dir",
	"log-level":   "log_level",
	"log-format":  "log_format",
}

type rootOptions struct {
	configFile string
	fileLists  []string
	noLogo     bool
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "xbdepends [flags] <files...>",
		Short: "Xbox binary dependencies tool",
		Long: `xbdepends reads the import tables of x64 EXE and DLL files and reports which
modules each one depends on, whether those modules are available on the target
platform, and which Visual C++ runtime it needs.

Arguments may be file names, wildcards (searched recursively with -r) or
directories, which are searched for *.exe and *.dll.

Exit codes:
  0 - All files passed
  1 - A file failed validation, could not be read, or the layout is incomplete
  2 - Invalid arguments or configuration error`,
		Version:       utils.GetVersionString(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.Bool("xboxone", false, "Validate for Xbox One")
	flags.Bool("scarlett", false, "Validate for Xbox Series X|S")
	flags.Bool("pc", false, "Validate for PC")
	flags.Bool("retail", false, "Validate for retail deployment")
	flags.Bool("layout", false, "Assume all processed files are in a deployment layout")
	flags.BoolP("recursive", "r", false, "Wildcard and directory search is recursive")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.BoolVar(&opts.noLogo, "nologo", false, "Suppress copyright message")
	flags.StringArrayVar(&opts.fileLists, "flist", nil, "Text file with a list of input files (one per line)")
	flags.StringP("format", "f", "text", "Output format (text, json, yaml)")
	flags.IntP("workers", "j", 0, "Number of files analyzed in parallel (default: number of CPUs)")
	flags.Bool("sbom", false, "Write a dependency SBOM")
	flags.String("sbom-format", "cyclonedx", "SBOM format (cyclonedx, spdx)")
	flags.String("sbom-dir", ".", "Directory the SBOM is written to")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.StringVarP(&opts.configFile, "config", "c", "", "Configuration file path")

	cmd.MarkFlagsMutuallyExclusive("xboxone", "scarlett", "pc")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version %s\n", utils.ToolName, utils.Version)
			fmt.Fprintf(out, "Commit: %s\n", utils.Commit)
			fmt.Fprintf(out, "Built: %s\n", utils.Date)
		},
	}
}

// configOverrides collects the flags given on the command line keyed like
// the configuration file
func configOverrides(flags *pflag.FlagSet) map[string]interface{} {
	overrides := make(map[string]interface{})
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})
	for _, target := range []string{"xboxone", "scarlett", "pc"} {
		if set, _ := flags.GetBool(target); set {
			overrides["target"] = target
		}
	}
	return overrides
}

func runAnalyze(cmd *cobra.Command, opts rootOptions, args []string) error {
	stderr := cmd.ErrOrStderr()

	bootstrap := utils.NewLogger(utils.LoggerConfig{Level: utils.LogLevelWarn, Output: stderr})
	cfg, err := utils.LoadWithOverrides(opts.configFile, configOverrides(cmd.Flags()), bootstrap)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	logger := utils.LoggerFromConfig(cfg, stderr)
	log := logger.WithComponent("xbdepends")
	ctx := utils.WithLogger(cmd.Context(), logger)

	target, err := policy.ParseTarget(cfg.Target)
	if err != nil {
		return usageError("%v", err)
	}
	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return usageError("%v", err)
	}

	paths, err := collectInputs(cfg, opts, args, logger)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	if len(paths) == 0 {
		_ = cmd.Usage()
		return usageError("need at least 1 file")
	}

	log.WithField("files", len(paths)).Debug("Starting analysis")

	driver := batch.NewDriver(batch.Options{
		Analysis: checks.Options{Target: target, Retail: cfg.Retail},
		Workers:  cfg.Workers,
		Layout:   cfg.Layout,
	}, logger)
	result, err := driver.Run(ctx, paths)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	var sbomInfo *sbom.SBOMInfo
	if cfg.SBOM.Enabled {
		sbomInfo, err = writeSBOM(ctx, result, cfg.SBOM)
		if err != nil {
			log.Warnf("SBOM generation failed: %v", err)
		}
	}

	if err := report.Render(cmd.OutOrStdout(), result, sbomInfo, report.Options{
		Format:  format,
		Verbose: cfg.Verbose,
		NoLogo:  opts.noLogo,
	}); err != nil {
		return &exitError{code: exitFailure, err: fmt.Errorf("failed to output results: %w", err)}
	}

	if result.Failed() {
		log.WithField("failed", result.Summary.Failed).Info("Analysis found problems")
		return &exitError{code: exitFailure}
	}
	log.Info("All files passed")
	return nil
}

// collectInputs expands the file lists first and then the arguments, in order
func collectInputs(cfg *utils.Config, opts rootOptions, args []string, logger *utils.Logger) ([]string, error) {
	collector := inputs.NewCollector(cfg.Recursive, logger)
	for _, list := range opts.fileLists {
		if err := collector.AddFileListPath(list); err != nil {
			return nil, err
		}
	}
	for _, arg := range args {
		if err := collector.Add(arg); err != nil {
			return nil, err
		}
	}
	return collector.Paths(), nil
}

// writeSBOM generates the dependency SBOM for result and writes it to the
// configured directory
func writeSBOM(ctx context.Context, result *batch.Result, cfg utils.SBOMConfig) (*sbom.SBOMInfo, error) {
	log := utils.LoggerFromContext(ctx).WithComponent("sbom")

	format, err := sbom.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	log.Infof("Generating SBOM in %s format", format)

	generator := sbom.NewGenerator()
	generated, err := generator.Generate(result, format)
	if err != nil {
		return nil, fmt.Errorf("failed to generate SBOM: %w", err)
	}

	if err := utils.EnsureDir(cfg.OutputDir); err != nil {
		return nil, err
	}
	outputPath := filepath.Join(cfg.OutputDir, format.FileName())

	info, err := generator.WriteToFile(generated, outputPath)
	if err != nil {
		return nil, err
	}
	log.Infof("SBOM generated successfully: %s", outputPath)
	return info, nil
}
