package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"mlcatalog/config"
	"mlcatalog/internal/adapter/enhance"
	"mlcatalog/internal/adapter/fs"
	"mlcatalog/internal/adapter/matlab"
	"mlcatalog/internal/adapter/store"
	"mlcatalog/internal/port"
	"mlcatalog/internal/usecase"
)

var (
	processDryRun       bool
	processIncludeTests bool
	processSkipPatterns []string
	processEnhance      bool
	processOutputDir    string
)

var processCmd = &cobra.Command{
	Use:   "process [path]",
	Short: "Extract functions from a MATLAB directory into the catalog",
	Long: `Process scans the given directory (non-recursive) for MATLAB function
files, extracts each function's signature and parameters, and writes the
records to the catalog database plus one output document per file.

The directory defaults to the MATLAB_FUNCTIONS_PATH environment variable.

Examples:
  mlcatalog process ./matlab
  mlcatalog process --dry-run              # Report without writing
  mlcatalog process --include-tests        # Keep test* files
  mlcatalog process --skip-patterns legacy # Extra name patterns to skip`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "extract and report without writing anything")
	processCmd.Flags().BoolVar(&processIncludeTests, "include-tests", false, "include files with a test prefix")
	processCmd.Flags().StringSliceVar(&processSkipPatterns, "skip-patterns", nil, "extra file name patterns to skip")
	processCmd.Flags().BoolVar(&processEnhance, "enhance", false, "generate documentation with the configured LLM")
	processCmd.Flags().StringVarP(&processOutputDir, "output", "o", "", "per-file output directory (default from config)")
	rootCmd.AddCommand(processCmd)
}

// resolveSourceDir picks the MATLAB directory from the positional argument
// or MATLAB_FUNCTIONS_PATH.
func resolveSourceDir(args []string) (string, error) {
	explicit := ""
	if len(args) > 0 {
		explicit = args[0]
	}
	dir, ok := config.ResolveFunctionsPath(explicit)
	if !ok {
		return "", fmt.Errorf("no path given and %s is not set", config.EnvFunctionsPath)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", abs)
	}
	return abs, nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	path, err := resolveSourceDir(args)
	if err != nil {
		return err
	}

	cfg := GetConfig()

	includeTests := processIncludeTests || cfg.Scan.IncludeTests
	skipPatterns := append(append([]string{}, cfg.Scan.SkipPatterns...), processSkipPatterns...)

	selector := fs.NewSelector(includeTests, skipPatterns)
	reader := fs.NewReader()
	extractor := matlab.NewExtractor()

	enhancer, err := buildEnhancer(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	var catalog port.CatalogStore
	var dbPath string
	if !processDryRun {
		if err := config.EnsureCatalogDir(path); err != nil {
			return fmt.Errorf("failed to create .mlcatalog directory: %w", err)
		}
		dbPath = cfg.CatalogDBPath(path)
		st, err := store.NewBoltStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer st.Close()
		catalog = st
	}

	uc := usecase.NewProcessUseCase(selector, reader, extractor, enhancer, catalog)

	outputDir := processOutputDir
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	fmt.Printf("Scanning %s...\n", path)

	bar := newBar("Processing")
	opts := usecase.ProcessOptions{
		DryRun:       processDryRun,
		OutputDir:    outputDir,
		OutputFormat: cfg.Output.Format,
		Progress: func(done, total int, _ string) {
			bar.track(done, total)
		},
	}

	result, err := uc.Process(cmd.Context(), path, opts)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	fmt.Printf("\nProcessing complete:\n")
	fmt.Printf("  Files processed:     %d\n", result.FilesProcessed)
	fmt.Printf("  Files skipped:       %d\n", result.FilesSkipped)
	fmt.Printf("  Functions extracted: %d\n", result.FunctionsExtracted)
	if result.FunctionsEnhanced > 0 {
		fmt.Printf("  Functions enhanced:  %d\n", result.FunctionsEnhanced)
	}

	if len(result.Diagnostics) > 0 {
		fmt.Printf("\nDiagnostics:\n")
		for _, d := range result.Diagnostics {
			loc := d.Path
			if d.Function != "" {
				loc += "/" + d.Function
			}
			fmt.Printf("  [%s] %s: %s\n", d.Code, loc, d.Message)
		}
	}
	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if processDryRun {
		fmt.Printf("\nDry run, nothing written.\n")
	} else {
		fmt.Printf("\nCatalog stored at: %s\n", dbPath)
	}
	return nil
}

func buildEnhancer(ctx context.Context, cfg *config.Config) (port.Enhancer, error) {
	if !processEnhance && !cfg.Enhance.Enabled {
		return nil, nil
	}

	switch cfg.Enhance.Provider {
	case "gemini":
		return enhance.NewGeminiEnhancer(ctx, cfg.Enhance.APIKeyEnv, cfg.Enhance.Model)
	case "mock":
		return enhance.NewMockEnhancer(), nil
	default:
		return nil, fmt.Errorf("unsupported enhance provider: %s", cfg.Enhance.Provider)
	}
}

// bar wraps progressbar so it can be created lazily once the total is known.
type bar struct {
	label string
	pb    *progressbar.ProgressBar
}

func newBar(label string) *bar {
	return &bar{label: label}
}

func (b *bar) track(done, total int) {
	if b.pb == nil {
		b.pb = progressbar.NewOptions(total,
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan]"+b.label+"[reset]"),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}
	b.pb.Set(done)
}
