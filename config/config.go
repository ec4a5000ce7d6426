package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvFunctionsPath names the environment variable the original workflow
// used to point at the MATLAB function directory.
const EnvFunctionsPath = "MATLAB_FUNCTIONS_PATH"

// Config holds all configuration for the catalog tool.
type Config struct {
	Scan      ScanConfig      `yaml:"scan"`
	Enhance   EnhanceConfig   `yaml:"enhance"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store"`
	Output    OutputConfig    `yaml:"output"`
}

// ScanConfig holds file selection configuration.
type ScanConfig struct {
	IncludeTests bool     `yaml:"include_tests"`
	SkipPatterns []string `yaml:"skip_patterns"`
}

// EnhanceConfig holds LLM documentation enhancement configuration.
type EnhanceConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider"` // "gemini", "mock"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider"` // "openai", "ollama", "mock"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// StoreConfig holds catalog store configuration.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig holds per-run file output configuration.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // "json" or "yaml"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			IncludeTests: false,
			SkipPatterns: nil,
		},
		Enhance: EnhanceConfig{
			Enabled:   false,
			Provider:  "gemini",
			Model:     "gemini-1.5-flash",
			APIKeyEnv: "GOOGLE_API_KEY",
		},
		Embedding: EmbeddingConfig{
			Enabled:   false,
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		Store: StoreConfig{
			Path: "",
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for mlcatalog.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "mlcatalog.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".mlcatalog", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CatalogDBPath returns the path to the catalog database for a source dir,
// honoring an explicit store path when configured.
func (c *Config) CatalogDBPath(dir string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(dir, ".mlcatalog", "catalog.db")
}

// EnsureCatalogDir ensures the .mlcatalog directory exists.
func EnsureCatalogDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".mlcatalog"), 0755)
}

// ResolveFunctionsPath picks the MATLAB directory: an explicit path wins,
// then the MATLAB_FUNCTIONS_PATH environment variable.
func ResolveFunctionsPath(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if env := os.Getenv(EnvFunctionsPath); env != "" {
		return env, true
	}
	return "", false
}
