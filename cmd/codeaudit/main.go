package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	units "github.com/docker/go-units"
	"github.com/joho/godotenv"

	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
	"github.com/ChamsBouzaiene/codeaudit/internal/config"
	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
	"github.com/ChamsBouzaiene/codeaudit/internal/history"
	"github.com/ChamsBouzaiene/codeaudit/internal/prompts"
	"github.com/ChamsBouzaiene/codeaudit/internal/providers"
	"github.com/ChamsBouzaiene/codeaudit/internal/repo"
	"github.com/ChamsBouzaiene/codeaudit/internal/report"
	"github.com/ChamsBouzaiene/codeaudit/internal/scanner"
	"github.com/ChamsBouzaiene/codeaudit/internal/tools"
)

const (
	exitClean       = 0
	exitIssuesFound = 1
	exitError       = 2
)

type cliFlags struct {
	repoURL     string
	localPath   string
	branch      string
	provider    string
	model       string
	baseURL     string
	output      string
	format      string
	configPath  string
	maxIter     int
	maxFiles    int
	timeoutSecs int
	temperature float64
	singleCall  bool
	extensions  string
	excludes    string
	failOn      string
	minSeverity string
	dryRun      bool
	initConfig  bool
	noHistory   bool
	verbose     bool
	quiet       bool
}

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional; missing files are fine.
	_ = godotenv.Load()

	var f cliFlags
	flag.StringVar(&f.repoURL, "repo", "", "Remote repository URL to clone and audit")
	flag.StringVar(&f.localPath, "local", ".", "Local repository path to audit")
	flag.StringVar(&f.branch, "branch", "", "Branch to clone (remote audits only)")
	flag.StringVar(&f.provider, "provider", "", "LLM provider: ollama, lmstudio, openai, anthropic, deepseek, groq")
	flag.StringVar(&f.model, "model", "", "Model name (empty uses the provider default)")
	flag.StringVar(&f.baseURL, "base-url", "", "Custom base URL for OpenAI-compatible endpoints")
	flag.StringVar(&f.output, "output", "", "Write the report to this file instead of stdout")
	flag.StringVar(&f.format, "format", "", "Report format: md or json")
	flag.StringVar(&f.configPath, "config", "", "Config file path (default: <repo>/"+config.FileName+")")
	flag.IntVar(&f.maxIter, "max-iterations", 0, "Agentic loop iteration budget")
	flag.IntVar(&f.maxFiles, "max-files", 0, "Maximum number of files to scan")
	flag.IntVar(&f.timeoutSecs, "timeout", 0, "Per-request timeout in seconds")
	flag.Float64Var(&f.temperature, "temperature", -1, "Sampling temperature")
	flag.BoolVar(&f.singleCall, "single-call", false, "Analyze everything in a single request instead of the tool loop")
	flag.StringVar(&f.extensions, "extensions", "", "Comma-separated file extensions to audit")
	flag.StringVar(&f.excludes, "exclude", "", "Comma-separated exclude patterns")
	flag.StringVar(&f.failOn, "fail-on", "", "Exit 1 when issues at or above this severity exist")
	flag.StringVar(&f.minSeverity, "min-severity", "", "Drop issues below this severity from the report")
	flag.BoolVar(&f.dryRun, "dry-run", false, "Print the file selection and exit without calling the model")
	flag.BoolVar(&f.initConfig, "init-config", false, "Write a default "+config.FileName+" and exit")
	flag.BoolVar(&f.noHistory, "no-history", false, "Skip recording the run in the local history database")
	flag.BoolVar(&f.verbose, "verbose", false, "Log every tool call")
	flag.BoolVar(&f.quiet, "quiet", false, "Only print the report")
	flag.Parse()

	if f.quiet {
		log.SetOutput(noopWriter{})
	}

	if f.initConfig {
		path := filepath.Join(f.localPath, config.FileName)
		if err := config.WriteDefault(path); err != nil {
			log.Printf("❌ %v", err)
			return exitError
		}
		log.Printf("📝 wrote %s", path)
		return exitClean
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, cleanup, err := resolveTarget(ctx, f)
	if err != nil {
		log.Printf("❌ %v", err)
		return exitError
	}
	if cleanup != nil {
		defer cleanup()
	}

	cfg, err := loadConfig(f, root)
	if err != nil {
		log.Printf("❌ %v", err)
		return exitError
	}

	sc, err := scanner.New(root, cfg.ScanConfig())
	if err != nil {
		log.Printf("❌ %v", err)
		return exitError
	}

	files, err := sc.CollectFiles()
	if err != nil {
		log.Printf("❌ scanning repository: %v", err)
		return exitError
	}
	log.Printf("🔍 %d auditable files under %s", len(files), root)

	if f.dryRun {
		printDryRun(files)
		return exitClean
	}

	client, err := providers.NewLLMClient(providers.Options{
		Provider: cfg.Model.Provider,
		BaseURL:  cfg.Model.BaseURL,
		Retry:    engine.DefaultRetryPolicy(),
	})
	if err != nil {
		log.Printf("❌ %v", err)
		return exitError
	}

	model := cfg.Model.Name
	if model == "" {
		model = providers.DefaultModels[strings.ToLower(cfg.Model.Provider)]
	}

	col := audit.NewCollector()
	sess := engine.NewSession(engine.SessionParams{
		RepoRoot:           root,
		Model:              model,
		MaxIterations:      cfg.Model.MaxIterations,
		MaxContextMessages: cfg.Model.MaxContextMessages,
		RequestTimeout:     cfg.Model.RequestTimeout(),
	}, col)

	strategy := buildStrategy(cfg, sc, col, client, f.verbose)

	started := time.Now()
	log.Printf("🤖 auditing with %s/%s (%s mode)", cfg.Model.Provider, model, modeName(cfg.Model.SingleCall))

	result, runErr := strategy.Run(ctx, sess)
	if runErr != nil {
		log.Printf("❌ audit interrupted: %v (iteration %d, %d messages, last tool %q)",
			runErr, result.Iterations, result.Messages, result.LastToolCall)
	} else {
		log.Printf("✅ audit %s: %d issues in %d iterations", result.State, len(result.Issues), result.Iterations)
	}

	minSev := audit.SeverityLow
	if cfg.Report.MinSeverity != "" {
		if minSev, err = audit.ParseSeverity(cfg.Report.MinSeverity); err != nil {
			log.Printf("❌ --min-severity: %v", err)
			return exitError
		}
	}

	rep := report.New(buildMetadata(cfg, root, model, files, result), result.Issues, minSev)
	if err := emitReport(rep, cfg.Report); err != nil {
		log.Printf("❌ %v", err)
		return exitError
	}

	if !f.noHistory {
		recordHistory(cfg, root, model, result, started)
	}

	return exitCode(cfg.Report.FailOn, result, runErr)
}

// resolveTarget picks the audit root: a fresh clone for --repo, the local
// path otherwise.
func resolveTarget(ctx context.Context, f cliFlags) (string, func(), error) {
	if f.repoURL != "" {
		if !repo.IsRemote(f.repoURL) {
			return "", nil, fmt.Errorf("--repo %s does not look like a git URL (use --local for paths)", f.repoURL)
		}
		log.Printf("📥 cloning %s", f.repoURL)
		return repo.Clone(ctx, f.repoURL, repo.CloneOptions{Branch: f.branch})
	}
	if err := repo.ValidateLocal(f.localPath); err != nil {
		return "", nil, err
	}
	return f.localPath, nil, nil
}

// loadConfig reads the config file and lays the explicitly-set flags over it.
func loadConfig(f cliFlags, root string) (config.Config, error) {
	var cfg config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.LoadFromDir(root)
	}
	if err != nil {
		return cfg, err
	}

	set := map[string]bool{}
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["provider"] {
		cfg.Model.Provider = f.provider
	}
	if set["model"] {
		cfg.Model.Name = f.model
	}
	if set["base-url"] {
		cfg.Model.BaseURL = f.baseURL
	}
	if set["max-iterations"] {
		cfg.Model.MaxIterations = f.maxIter
	}
	if set["timeout"] {
		cfg.Model.TimeoutSeconds = f.timeoutSecs
	}
	if set["temperature"] {
		cfg.Model.Temperature = float32(f.temperature)
	}
	if set["single-call"] {
		cfg.Model.SingleCall = f.singleCall
	}
	if set["max-files"] {
		cfg.Scanner.MaxFiles = f.maxFiles
	}
	if set["extensions"] {
		cfg.Scanner.Extensions = splitList(f.extensions)
	}
	if set["exclude"] {
		cfg.Scanner.Excludes = splitList(f.excludes)
	}
	if set["format"] {
		cfg.Report.Format = f.format
	}
	if set["output"] {
		cfg.Report.Output = f.output
	}
	if set["fail-on"] {
		cfg.Report.FailOn = f.failOn
	}
	if set["min-severity"] {
		cfg.Report.MinSeverity = f.minSeverity
	}
	return cfg, nil
}

func buildStrategy(cfg config.Config, sc *scanner.Scanner, col *audit.Collector, client engine.LLMClient, verbose bool) engine.Strategy {
	opts := engine.ChatOptions{Temperature: cfg.Model.Temperature}
	registry := prompts.DefaultRegistry()

	if cfg.Model.SingleCall {
		return &engine.SingleCallAuditor{
			LLM:          client,
			Scanner:      sc,
			SystemPrompt: registry.MustGet(prompts.AuditorSingleCallID).Content,
			Opts:         opts,
			Verbose:      verbose,
		}
	}
	return &engine.AgentAuditor{
		LLM:           client,
		Tools:         tools.NewAuditRegistry(sc, col),
		SystemPrompt:  registry.MustGet(prompts.AuditorID).Content,
		InitialPrompt: prompts.InitialDirective(sc.Root()),
		Opts:          opts,
		Verbose:       verbose,
	}
}

func buildMetadata(cfg config.Config, root, model string, files []scanner.File, result engine.Result) report.Metadata {
	var totalBytes int64
	for _, f := range files {
		totalBytes += f.Size
	}
	return report.Metadata{
		RepoPath:     root,
		Provider:     cfg.Model.Provider,
		Model:        model,
		GeneratedAt:  time.Now(),
		State:        result.State,
		Iterations:   result.Iterations,
		FilesScanned: len(files),
		TotalBytes:   totalBytes,
		Languages:    scanner.LanguageDistribution(files),
	}
}

func emitReport(rep *report.Report, cfg config.ReportConfig) error {
	var out []byte
	switch cfg.Format {
	case "", "md", "markdown":
		out = []byte(rep.Markdown())
	case "json":
		data, err := rep.JSON()
		if err != nil {
			return fmt.Errorf("rendering JSON report: %w", err)
		}
		out = data
	default:
		return fmt.Errorf("unknown report format: %s", cfg.Format)
	}

	if cfg.Output == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(cfg.Output, out, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	log.Printf("📄 report written to %s", cfg.Output)
	return nil
}

func recordHistory(cfg config.Config, root, model string, result engine.Result, started time.Time) {
	path, err := history.DefaultPath()
	if err != nil {
		log.Printf("⚠️  history disabled: %v", err)
		return
	}
	store, err := history.Open(path)
	if err != nil {
		log.Printf("⚠️  history disabled: %v", err)
		return
	}
	defer store.Close()

	run := history.Run{
		RepoPath:   root,
		Provider:   cfg.Model.Provider,
		Model:      model,
		State:      string(result.State),
		Iterations: result.Iterations,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	run.SeverityCounts(audit.Summarize(result.Issues))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := store.RecordRun(ctx, run); err != nil {
		log.Printf("⚠️  recording run: %v", err)
	}
}

func exitCode(failOn string, result engine.Result, runErr error) int {
	if runErr != nil {
		return exitError
	}
	if failOn == "" {
		return exitClean
	}
	threshold, err := audit.ParseSeverity(failOn)
	if err != nil {
		log.Printf("❌ --fail-on: %v", err)
		return exitError
	}
	if audit.CountAtOrAbove(result.Issues, threshold) > 0 {
		return exitIssuesFound
	}
	return exitClean
}

func modeName(singleCall bool) string {
	if singleCall {
		return "single-call"
	}
	return "agentic"
}

func printDryRun(files []scanner.File) {
	var total int64
	for _, f := range files {
		fmt.Printf("%10s  %s\n", units.HumanSize(float64(f.Size)), f.Path)
		total += f.Size
	}
	fmt.Printf("\n%d files, %s total\n", len(files), units.HumanSize(float64(total)))
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
