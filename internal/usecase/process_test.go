package usecase

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mlcatalog/internal/adapter/enhance"
	"mlcatalog/internal/adapter/fs"
	"mlcatalog/internal/adapter/matlab"
	"mlcatalog/internal/adapter/memstore"
	"mlcatalog/internal/domain"
	"mlcatalog/internal/port"
)

const calcSrc = `function ang = calcAngle(v1, v2, units)
% CALCANGLE Angle between two vectors.
if nargin < 3
    units = 'rad';
end
ang = acos(dot(v1, v2));
end
`

const reconSrc = `function img = recon(kdata, lambda)
if nargin < 2
    lambda = 0.01;
end
img = ifft2(kdata) * lambda;
end

function h = buildHeader(kdata)
h = struct();
end
`

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"calcAngle.m": calcSrc,
		"recon.m":     reconSrc,
		"demoShow.m":  "function demoShow()\nend\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newProcessUC(store *memstore.MemoryStore, enhancer port.Enhancer) *ProcessUseCase {
	return NewProcessUseCase(
		fs.NewSelector(false, nil),
		fs.NewReader(),
		matlab.NewExtractor(),
		enhancer,
		store,
	)
}

func TestProcessStoresRecords(t *testing.T) {
	dir := setupDir(t)
	store := memstore.NewMemoryStore()
	uc := newProcessUC(store, nil)

	result, err := uc.Process(context.Background(), dir, ProcessOptions{})
	if err != nil {
		t.Fatal(err)
	}

	// demoShow.m is filtered by the selector.
	if result.FilesProcessed != 2 {
		t.Errorf("files processed = %d, want 2", result.FilesProcessed)
	}
	if result.FunctionsExtracted != 3 {
		t.Errorf("functions extracted = %d, want 3", result.FunctionsExtracted)
	}

	fn, err := store.GetFunction("calcAngle", "calcAngle")
	if err != nil {
		t.Fatal(err)
	}
	if fn.Category != domain.CategoryMain {
		t.Errorf("category = %s", fn.Category)
	}
	if len(fn.Parameters) != 3 || fn.Parameters[2].DefaultValue != "'rad'" {
		t.Errorf("parameters = %+v", fn.Parameters)
	}

	stats, err := store.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalFunctions != 3 || stats.TotalFiles != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByCategory["main"] != 2 || stats.ByCategory["helper"] != 1 {
		t.Errorf("by category = %v", stats.ByCategory)
	}
}

func TestProcessCountsEmptyFileAsSkippedOnly(t *testing.T) {
	dir := setupDir(t)
	// The declaration sits inside a block comment, so the file passes the
	// selector's line pre-scan but extracts zero functions.
	commented := "%{\nfunction ghost(x)\nend\n%}\nx = 1;\n"
	if err := os.WriteFile(filepath.Join(dir, "notes.m"), []byte(commented), 0644); err != nil {
		t.Fatal(err)
	}

	uc := newProcessUC(memstore.NewMemoryStore(), nil)
	result, err := uc.Process(context.Background(), dir, ProcessOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesProcessed != 2 {
		t.Errorf("files processed = %d, want 2", result.FilesProcessed)
	}
	if result.FilesSkipped != 1 {
		t.Errorf("files skipped = %d, want 1", result.FilesSkipped)
	}
	if result.FilesProcessed+result.FilesSkipped != 3 {
		t.Errorf("processed %d + skipped %d does not cover the 3 selected files",
			result.FilesProcessed, result.FilesSkipped)
	}
}

func TestProcessDryRunWritesNothing(t *testing.T) {
	dir := setupDir(t)
	store := memstore.NewMemoryStore()
	uc := newProcessUC(store, nil)

	outDir := filepath.Join(dir, "out")
	result, err := uc.Process(context.Background(), dir, ProcessOptions{
		DryRun:    true,
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.FunctionsExtracted != 3 {
		t.Errorf("functions extracted = %d", result.FunctionsExtracted)
	}

	if all, _ := store.ListFunctions(); len(all) != 0 {
		t.Errorf("dry run stored %d records", len(all))
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("dry run created the output directory")
	}
}

func TestProcessWritesPerFileOutput(t *testing.T) {
	dir := setupDir(t)
	outDir := filepath.Join(dir, "out")
	uc := newProcessUC(memstore.NewMemoryStore(), nil)

	_, err := uc.Process(context.Background(), dir, ProcessOptions{
		OutputDir:    outDir,
		OutputFormat: "json",
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "recon.json"))
	if err != nil {
		t.Fatal(err)
	}
	var out FileOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Functions) != 2 {
		t.Errorf("output functions = %d, want 2", len(out.Functions))
	}
	if out.Functions[0].Name != "recon" {
		t.Errorf("first function = %s", out.Functions[0].Name)
	}

	if _, err := os.Stat(filepath.Join(outDir, "summary.json")); err != nil {
		t.Errorf("run summary not written: %v", err)
	}
}

func TestProcessWithEnhancer(t *testing.T) {
	dir := setupDir(t)
	store := memstore.NewMemoryStore()
	uc := newProcessUC(store, enhance.NewMockEnhancer())

	result, err := uc.Process(context.Background(), dir, ProcessOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if result.FunctionsEnhanced != 3 {
		t.Errorf("enhanced = %d, want 3", result.FunctionsEnhanced)
	}

	fn, err := store.GetFunction("calcAngle", "calcAngle")
	if err != nil {
		t.Fatal(err)
	}
	if !fn.Enhanced || fn.Description == "" {
		t.Errorf("record not enhanced: %+v", fn)
	}
}

func TestProcessEnhancerFailureFallsBack(t *testing.T) {
	dir := setupDir(t)
	store := memstore.NewMemoryStore()
	uc := newProcessUC(store, &enhance.MockEnhancer{Fail: true})

	result, err := uc.Process(context.Background(), dir, ProcessOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if result.FunctionsEnhanced != 0 {
		t.Errorf("enhanced = %d, want 0", result.FunctionsEnhanced)
	}
	if len(result.Errors) == 0 {
		t.Error("enhancement failures not reported")
	}

	// Fallback records are still stored.
	fn, err := store.GetFunction("calcAngle", "calcAngle")
	if err != nil {
		t.Fatal(err)
	}
	if fn.Enhanced {
		t.Error("fallback record marked enhanced")
	}
	if fn.Description == "" {
		t.Error("fallback record has no description")
	}
}

func TestProcessIdempotent(t *testing.T) {
	dir := setupDir(t)
	store := memstore.NewMemoryStore()
	uc := newProcessUC(store, nil)

	if _, err := uc.Process(context.Background(), dir, ProcessOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Process(context.Background(), dir, ProcessOptions{}); err != nil {
		t.Fatal(err)
	}

	all, err := store.ListFunctions()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("records after second run = %d, want 3", len(all))
	}
}

func TestProcessProgressCallback(t *testing.T) {
	dir := setupDir(t)
	uc := newProcessUC(memstore.NewMemoryStore(), nil)

	var calls int
	var lastTotal int
	_, err := uc.Process(context.Background(), dir, ProcessOptions{
		Progress: func(done, total int, _ string) {
			calls++
			lastTotal = total
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 || lastTotal != 2 {
		t.Errorf("calls = %d, total = %d, want 2 and 2", calls, lastTotal)
	}
}

func TestVerifyCleanAndDrifted(t *testing.T) {
	dir := setupDir(t)
	store := memstore.NewMemoryStore()

	processUC := newProcessUC(store, nil)
	if _, err := processUC.Process(context.Background(), dir, ProcessOptions{}); err != nil {
		t.Fatal(err)
	}

	verifyUC := NewVerifyUseCase(fs.NewSelector(false, nil), fs.NewReader(), matlab.NewExtractor(), store)
	result, err := verifyUC.Verify(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Clean() {
		t.Errorf("fresh catalog not clean: %+v", result)
	}
	if result.ByCategory["main"] != 2 {
		t.Errorf("by category = %v", result.ByCategory)
	}

	// A new file makes the catalog incomplete.
	newFile := filepath.Join(dir, "added.m")
	if err := os.WriteFile(newFile, []byte("function added(x)\nend\n"), 0644); err != nil {
		t.Fatal(err)
	}
	result, err = verifyUC.Verify(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Missing) != 1 {
		t.Errorf("missing = %v, want the added function", result.Missing)
	}

	// Removing a source file leaves stale records.
	if err := os.Remove(newFile); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "recon.m")); err != nil {
		t.Fatal(err)
	}
	result, err = verifyUC.Verify(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Stale) != 2 {
		t.Errorf("stale = %v, want recon and buildHeader", result.Stale)
	}
}
