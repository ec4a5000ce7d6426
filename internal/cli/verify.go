package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mlcatalog/internal/adapter/fs"
	"mlcatalog/internal/adapter/matlab"
	"mlcatalog/internal/adapter/store"
	"mlcatalog/internal/usecase"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Check the catalog against the MATLAB sources",
	Long: `Verify re-extracts every candidate file and compares the results with
the stored catalog, reporting missing, stale, and drifted records. Nothing
is written.

Examples:
  mlcatalog verify ./matlab`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	path, err := resolveSourceDir(args)
	if err != nil {
		return err
	}

	cfg := GetConfig()
	st, err := store.NewBoltStore(cfg.CatalogDBPath(path))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer st.Close()

	selector := fs.NewSelector(cfg.Scan.IncludeTests, cfg.Scan.SkipPatterns)
	uc := usecase.NewVerifyUseCase(selector, fs.NewReader(), matlab.NewExtractor(), st)

	result, err := uc.Verify(path)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("Catalog verification:\n")
	fmt.Printf("  Stored functions: %d\n", result.StoredFunctions)
	fmt.Printf("  Files checked:    %d\n", result.FilesChecked)
	for _, cat := range []string{"main", "helper", "internal"} {
		if n := result.ByCategory[cat]; n > 0 {
			fmt.Printf("  %-8s %d\n", cat+":", n)
		}
	}

	if result.Clean() {
		fmt.Printf("\nCatalog matches the sources.\n")
		return nil
	}

	if len(result.Missing) > 0 {
		fmt.Printf("\nMissing from catalog:\n")
		for _, k := range result.Missing {
			fmt.Printf("  - %s\n", k)
		}
	}
	if len(result.Stale) > 0 {
		fmt.Printf("\nStale records (no longer extract):\n")
		for _, k := range result.Stale {
			fmt.Printf("  - %s\n", k)
		}
	}
	if len(result.Mismatched) > 0 {
		fmt.Printf("\nDrifted records:\n")
		for _, k := range result.Mismatched {
			fmt.Printf("  - %s\n", k)
		}
	}

	return fmt.Errorf("catalog does not match the sources")
}
