package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mlcatalog/config"
	"mlcatalog/internal/adapter/embedding"
	"mlcatalog/internal/adapter/store"
	"mlcatalog/internal/port"
	"mlcatalog/internal/usecase"
)

var reembedCmd = &cobra.Command{
	Use:   "reembed [path]",
	Short: "Rebuild the embedding index from the stored catalog",
	Long: `Reembed drops the existing vectors and embeds every stored function's
documentation with the configured embedding model. Run it after changing
models or after a large catalog update.

Examples:
  mlcatalog reembed ./matlab`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReembed,
}

func init() {
	rootCmd.AddCommand(reembedCmd)
}

func runReembed(cmd *cobra.Command, args []string) error {
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

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	vectors, err := store.NewBoltVectorStore(st.DB(), embedder.Dimension())
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}

	uc := usecase.NewReembedUseCase(st, embedder, vectors)

	bar := newBar("Embedding")
	result, err := uc.Reembed(func(done, total int) {
		bar.track(done, total)
	})
	if err != nil {
		return fmt.Errorf("re-embedding failed: %w", err)
	}

	fmt.Printf("\nRe-embedding complete:\n")
	fmt.Printf("  Functions embedded: %d\n", result.FunctionsEmbedded)
	fmt.Printf("  Model:              %s (%d dimensions)\n", result.Model, result.Dimension)
	return nil
}

func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BatchSize)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}
