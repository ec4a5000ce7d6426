package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mlcatalog/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "mlcatalog",
	Short: "Extract and catalog MATLAB function signatures and parameters",
	Long: `mlcatalog scans a directory of MATLAB source files, extracts every
function's signature, parameters, and optional-parameter defaults, and
stores the records in a local catalog. Documentation can be generated
with an LLM and embedded for similarity search.

Example usage:
  mlcatalog process ./matlab       # Extract and catalog a directory
  mlcatalog process --dry-run      # Extract and report without writing
  mlcatalog verify ./matlab        # Check catalog against the sources
  mlcatalog show makeArbitraryRf   # Show a stored record`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// API keys commonly live in a local .env file.
		godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mlcatalog.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "working directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
