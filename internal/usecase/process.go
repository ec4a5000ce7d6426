package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mlcatalog/internal/domain"
	"mlcatalog/internal/port"
)

// ProcessUseCase runs the full pipeline over a directory: select files,
// extract function records, optionally enhance them with generated
// documentation, then persist to the catalog and write per-file output.
type ProcessUseCase struct {
	selector  port.FileSelector
	reader    port.FileReader
	extractor port.Extractor
	enhancer  port.Enhancer // nil disables enhancement
	store     port.CatalogStore
}

func NewProcessUseCase(
	selector port.FileSelector,
	reader port.FileReader,
	extractor port.Extractor,
	enhancer port.Enhancer,
	store port.CatalogStore,
) *ProcessUseCase {
	return &ProcessUseCase{
		selector:  selector,
		reader:    reader,
		extractor: extractor,
		enhancer:  enhancer,
		store:     store,
	}
}

// ProcessOptions control a single run.
type ProcessOptions struct {
	// DryRun extracts and reports but writes nothing.
	DryRun bool

	// OutputDir, when set, receives one JSON or YAML document per processed
	// file alongside the catalog writes.
	OutputDir    string
	OutputFormat string // "json" (default) or "yaml"

	// Progress, when set, is called after each file with the running count.
	Progress func(done, total int, path string)
}

// ProcessResult summarizes a run.
type ProcessResult struct {
	FilesProcessed     int
	FilesSkipped       int
	FunctionsExtracted int
	FunctionsEnhanced  int
	Diagnostics        []domain.Diagnostic
	Errors             []string
}

// Process runs the pipeline over every candidate file in dir. Files are
// handled one at a time in lexicographic order so output is reproducible.
func (u *ProcessUseCase) Process(ctx context.Context, dir string, opts ProcessOptions) (*ProcessResult, error) {
	result := &ProcessResult{}

	paths, err := u.selector.Select(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}

	if !opts.DryRun && opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := u.processFile(ctx, path, opts, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(paths), path)
		}
	}

	if !opts.DryRun {
		if err := u.updateStats(result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to update stats: %v", err))
		}
		if opts.OutputDir != "" {
			if err := writeRunSummary(opts.OutputDir, dir, result); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to write summary: %v", err))
			}
		}
	}

	return result, nil
}

// writeRunSummary records the run's counts and diagnostics next to the
// per-file output.
func writeRunSummary(outDir, sourceDir string, result *ProcessResult) error {
	summary := struct {
		SourceDir          string              `json:"source_dir"`
		FilesProcessed     int                 `json:"files_processed"`
		FilesSkipped       int                 `json:"files_skipped"`
		FunctionsExtracted int                 `json:"functions_extracted"`
		FunctionsEnhanced  int                 `json:"functions_enhanced,omitempty"`
		Diagnostics        []domain.Diagnostic `json:"diagnostics,omitempty"`
		Errors             []string            `json:"errors,omitempty"`
	}{
		SourceDir:          sourceDir,
		FilesProcessed:     result.FilesProcessed,
		FilesSkipped:       result.FilesSkipped,
		FunctionsExtracted: result.FunctionsExtracted,
		FunctionsEnhanced:  result.FunctionsEnhanced,
		Diagnostics:        result.Diagnostics,
		Errors:             result.Errors,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "summary.json"), data, 0644)
}

func (u *ProcessUseCase) processFile(ctx context.Context, path string, opts ProcessOptions, result *ProcessResult) error {
	content, err := u.reader.ReadFile(path)
	if err != nil {
		result.FilesSkipped++
		result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
			Code:    domain.DiagFileReadError,
			Path:    path,
			Message: err.Error(),
		})
		return nil
	}

	sf, diags, err := u.extractor.Extract(path, content)
	if err != nil {
		return err
	}
	result.Diagnostics = append(result.Diagnostics, diags...)

	if len(sf.Functions) == 0 {
		result.FilesSkipped++
		return nil
	}
	result.FilesProcessed++
	result.FunctionsExtracted += len(sf.Functions)

	enhanced := make([]domain.EnhancedFunction, 0, len(sf.Functions))
	for _, fn := range sf.Functions {
		ef, err := u.enhance(ctx, fn)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("enhance %s/%s: %v", path, fn.Name, err))
		}
		if ef.Enhanced {
			result.FunctionsEnhanced++
		}
		enhanced = append(enhanced, ef)
	}

	if opts.DryRun {
		return nil
	}

	stem := fileStem(path)
	for _, ef := range enhanced {
		if err := u.store.UpsertFunction(stem, ef); err != nil {
			return fmt.Errorf("failed to store %s: %w", ef.Name, err)
		}
	}

	if opts.OutputDir != "" {
		if err := writeFileOutput(opts.OutputDir, opts.OutputFormat, stem, sf, enhanced); err != nil {
			return err
		}
	}

	return nil
}

func (u *ProcessUseCase) enhance(ctx context.Context, fn domain.FunctionRecord) (domain.EnhancedFunction, error) {
	if u.enhancer == nil {
		return domain.EnhancedFunction{FunctionRecord: fn}, nil
	}
	return u.enhancer.Enhance(ctx, fn)
}

// FileOutput is the per-file document written to the output directory.
type FileOutput struct {
	Path      string                    `json:"path" yaml:"path"`
	Namespace string                    `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	IsClass   bool                      `json:"is_classdef,omitempty" yaml:"is_classdef,omitempty"`
	Class     domain.ClassInfo          `json:"class_info,omitempty" yaml:"class_info,omitempty"`
	Functions []domain.EnhancedFunction `json:"functions" yaml:"functions"`
}

func writeFileOutput(outDir, format, stem string, sf domain.SourceFile, fns []domain.EnhancedFunction) error {
	out := FileOutput{
		Path:      sf.Path,
		Namespace: sf.Namespace,
		IsClass:   sf.IsClass,
		Class:     sf.Class,
		Functions: fns,
	}

	var data []byte
	var ext string
	var err error
	if strings.EqualFold(format, "yaml") {
		data, err = yaml.Marshal(out)
		ext = ".yaml"
	} else {
		data, err = json.MarshalIndent(out, "", "  ")
		ext = ".json"
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	return os.WriteFile(filepath.Join(outDir, stem+ext), data, 0644)
}

func (u *ProcessUseCase) updateStats(result *ProcessResult) error {
	all, err := u.store.ListFunctions()
	if err != nil {
		return err
	}

	stats := domain.Stats{
		TotalFunctions: len(all),
		ByCategory:     make(map[string]int),
	}
	files := make(map[string]bool)
	for _, fn := range all {
		files[fn.ParentFile] = true
		stats.ByCategory[string(fn.Category)]++
	}
	stats.TotalFiles = len(files)

	return u.store.UpdateStats(stats)
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
