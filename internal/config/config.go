// Package config loads audit settings from .codeaudit.yml and merges them
// with command-line flags. Flags win over the file, the file wins over
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChamsBouzaiene/codeaudit/internal/scanner"
)

// FileName is the per-repository config file looked up at the audit root.
const FileName = ".codeaudit.yml"

// Config is the full audit configuration.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Scanner ScannerConfig `yaml:"scanner"`
	Report  ReportConfig  `yaml:"report"`
}

// ModelConfig selects and tunes the LLM backend.
type ModelConfig struct {
	Provider           string  `yaml:"provider"`
	Name               string  `yaml:"name"`
	BaseURL            string  `yaml:"base_url"`
	Temperature        float32 `yaml:"temperature"`
	TimeoutSeconds     int     `yaml:"timeout_seconds"`
	MaxIterations      int     `yaml:"max_iterations"`
	MaxContextMessages int     `yaml:"max_context_messages"`
	SingleCall         bool    `yaml:"single_call"`
}

// ScannerConfig bounds which files the audit may see.
type ScannerConfig struct {
	Extensions  []string `yaml:"extensions"`
	Excludes    []string `yaml:"excludes"`
	MaxFileSize int64    `yaml:"max_file_size"`
	MaxFiles    int      `yaml:"max_files"`
}

// ReportConfig controls output and exit behavior.
type ReportConfig struct {
	Format      string `yaml:"format"` // md or json
	Output      string `yaml:"output"` // file path; empty writes to stdout
	FailOn      string `yaml:"fail_on"`
	MinSeverity string `yaml:"min_severity"`
}

// Default returns the built-in configuration.
func Default() Config {
	sc := scanner.DefaultConfig()
	return Config{
		Model: ModelConfig{
			Provider:           "ollama",
			Temperature:        0.1,
			TimeoutSeconds:     120,
			MaxIterations:      50,
			MaxContextMessages: 50,
		},
		Scanner: ScannerConfig{
			Extensions:  sc.Extensions,
			Excludes:    sc.Excludes,
			MaxFileSize: sc.MaxFileSize,
			MaxFiles:    sc.MaxFiles,
		},
		Report: ReportConfig{
			Format:      "md",
			MinSeverity: "low",
		},
	}
}

// Load reads a config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromDir loads dir/.codeaudit.yml when it exists; a missing file is
// not an error and yields the defaults.
func LoadFromDir(dir string) (Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// RequestTimeout converts the configured timeout into a duration.
func (m ModelConfig) RequestTimeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// ScanConfig maps the scanner section onto the scanner package type.
func (c Config) ScanConfig() scanner.Config {
	return scanner.Config{
		Extensions:  c.Scanner.Extensions,
		Excludes:    c.Scanner.Excludes,
		MaxFileSize: c.Scanner.MaxFileSize,
		MaxFiles:    c.Scanner.MaxFiles,
	}
}

// defaultTemplate is written by --init-config.
const defaultTemplate = `# codeaudit configuration

model:
  # Provider: ollama, lmstudio, openai, anthropic, deepseek, groq.
  # API keys come from the environment (OPENAI_API_KEY, ANTHROPIC_API_KEY, ...).
  provider: ollama
  # Model name; empty picks the provider default.
  name: ""
  # Custom endpoint for OpenAI-compatible servers.
  base_url: ""
  temperature: 0.1
  # Per-request timeout in seconds.
  timeout_seconds: 120
  # Agentic loop budget.
  max_iterations: 50
  max_context_messages: 50
  # true sends the whole file selection in one request instead of the loop.
  single_call: false

scanner:
  extensions: [go, rs, py, js, jsx, ts, tsx, java, c, h, cpp, hpp, rb, php, cs, swift, kt]
  excludes: [target, node_modules, dist, build, vendor, .git]
  # Bytes; larger files are never read.
  max_file_size: 1048576
  max_files: 100

report:
  # md or json
  format: md
  # Output path; empty prints to stdout.
  output: ""
  # Exit non-zero when issues at or above this severity exist.
  fail_on: ""
  # Drop issues below this severity from the report.
  min_severity: low
`

// WriteDefault writes the commented default config, refusing to overwrite.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0o644)
}
