package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mlcatalog/internal/adapter/store"
	"mlcatalog/internal/domain"
	"mlcatalog/internal/usecase"
)

var (
	showSearch  bool
	showSimilar bool
	showTopK    int
)

var showCmd = &cobra.Command{
	Use:   "show <name> [path]",
	Short: "Show stored records for a function",
	Long: `Show prints every catalog record matching the given function name.

Examples:
  mlcatalog show makeArbitraryRf ./matlab
  mlcatalog show --search angle ./matlab              # Substring match
  mlcatalog show --similar "slice gradient" ./matlab  # Embedding search`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showSearch, "search", false, "match by substring instead of exact name")
	showCmd.Flags().BoolVar(&showSimilar, "similar", false, "rank by embedding similarity to the query text")
	showCmd.Flags().IntVarP(&showTopK, "top", "k", 5, "number of similarity results")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	name := args[0]
	path, err := resolveSourceDir(args[1:])
	if err != nil {
		return err
	}

	cfg := GetConfig()
	st, err := store.NewBoltStore(cfg.CatalogDBPath(path))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer st.Close()

	if showSimilar {
		return runSimilar(st, name)
	}

	var fns []domain.EnhancedFunction
	if showSearch {
		fns, err = st.SearchFunctions(name)
	} else {
		fns, err = st.FindByName(name)
	}
	if err != nil {
		return err
	}
	if len(fns) == 0 {
		return fmt.Errorf("no records for %q", name)
	}

	for i, fn := range fns {
		if i > 0 {
			fmt.Println()
		}
		printFunction(fn)
	}
	return nil
}

func runSimilar(st *store.BoltStore, query string) error {
	cfg := GetConfig()
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	vectors, err := store.NewBoltVectorStore(st.DB(), embedder.Dimension())
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}

	uc := usecase.NewSearchUseCase(st, embedder, vectors)
	hits, err := uc.Similar(query, showTopK)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return fmt.Errorf("no results for %q", query)
	}

	for i, hit := range hits {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("[%.3f] ", hit.Score)
		printFunction(hit.Function)
	}
	return nil
}

func printFunction(fn domain.EnhancedFunction) {
	fmt.Printf("%s  (%s, %s)\n", fn.Name, fn.Category, fn.ParentFile)
	fmt.Printf("  %s\n", fn.RawSignature)
	if fn.CallingPattern != "" {
		fmt.Printf("  Called as: %s\n", fn.CallingPattern)
	}
	if fn.Description != "" {
		fmt.Printf("  %s\n", fn.Description)
	}

	if len(fn.Parameters) > 0 {
		fmt.Printf("  Parameters:\n")
		for _, p := range fn.Parameters {
			line := "    " + p.Name
			if p.Required {
				line += " (required)"
			} else {
				line += fmt.Sprintf(" (optional, default: %s, via %s)", p.DefaultValue, p.DetectionMethod)
			}
			if doc := findDoc(fn.ParamDocs, p.Name); doc != nil && doc.Description != "" {
				line += " - " + doc.Description
			}
			fmt.Println(line)
		}
	}
	if len(fn.NameValues) > 0 {
		fmt.Printf("  Name-value options:\n")
		for _, p := range fn.NameValues {
			fmt.Printf("    %s (default: %s)\n", p.Name, p.DefaultValue)
		}
	}
	if len(fn.Outputs) > 0 {
		fmt.Printf("  Outputs: %s\n", strings.Join(fn.Outputs, ", "))
	}
	if fn.ExampleCall != "" {
		fmt.Printf("  Example: %s\n", fn.ExampleCall)
	}
}

func findDoc(docs []domain.ParameterDoc, name string) *domain.ParameterDoc {
	for i := range docs {
		if docs[i].Name == name {
			return &docs[i]
		}
	}
	return nil
}
