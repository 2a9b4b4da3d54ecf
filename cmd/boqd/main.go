// Package main implements the boqd CLI for running bill-of-quantities
// analyses from the command line.
//
// The analyze command reads a work-item file, runs the full specialist
// pipeline against the built-in heuristic invoker, and prints the result as
// JSON. It exists for offline runs and smoke testing; production callers
// consume the orchestrator as a library.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
	"github.com/fyrsmithlabs/boqd/internal/config"
	"github.com/fyrsmithlabs/boqd/internal/executor"
	"github.com/fyrsmithlabs/boqd/internal/logging"
	"github.com/fyrsmithlabs/boqd/internal/orchestrator"
	"github.com/fyrsmithlabs/boqd/internal/planner"
	"github.com/fyrsmithlabs/boqd/internal/specialist"
)

// version information (set via ldflags during build)
var version = "dev"

var (
	configPath string
	inputPath  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "boqd",
	Short: "Bill-of-quantities multi-specialist analysis",
	Long: `boqd analyzes a bill-of-quantities block with a set of construction
specialists: structural, materials, standards, mandatory rules, cost, and
document validation. Specialists run in dependency order, disagreements
between them are detected and arbitrated against a fixed authority
hierarchy, and the merged result is printed as JSON.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	analyzeCmd.Flags().StringVar(&inputPath, "input", "", "work-item YAML file (- for stdin)")
	_ = analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(rolesCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze --input item.yaml",
	Short: "Analyze one work item",
	Long: `Analyze a single work item described in a YAML file.

Example file:

  title: Foundation works
  rows:
    - position: "1.1"
      description: Excavation for foundation
      quantity: 120
      unit: m3
      unit_price: 18.5
  project:
    name: Office building A
    budget_constraint: "150000"`,
	RunE: runAnalyze,
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the specialist roles and their dependencies",
	RunE:  runRoles,
}

// inputFile is the on-disk shape of one analysis request.
type inputFile struct {
	Title   string                  `yaml:"title"`
	Rows    []analysis.RowEntry     `yaml:"rows"`
	Context map[string]any          `yaml:"context"`
	Project analysis.ProjectContext `yaml:"project"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	input, err := readInput(inputPath)
	if err != nil {
		return err
	}

	item := analysis.WorkItem{Title: input.Title, Rows: input.Rows, Context: input.Context}
	if item.Title == "" {
		return fmt.Errorf("work item has no title")
	}
	if len(item.Rows) == 0 {
		return fmt.Errorf("work item has no rows")
	}

	invoker := buildInvoker(cfg)
	orch := orchestrator.New(invoker,
		orchestrator.WithLogger(logger),
		orchestrator.WithRoleTimeout(cfg.Analyzer.RoleTimeout),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := orch.Analyze(ctx, item, input.Project)
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// buildInvoker assembles the heuristic invoker with the configured
// middleware, outermost first: rate limit, then retry, then the specialist.
func buildInvoker(cfg *config.Config) executor.Invoker {
	var invoker executor.Invoker = specialist.NewHeuristic()
	invoker = specialist.WithRetry(invoker, specialist.RetryConfig{
		MaxRetries:     cfg.Analyzer.Retry.MaxRetries,
		InitialBackoff: cfg.Analyzer.Retry.InitialBackoff,
		MaxBackoff:     cfg.Analyzer.Retry.MaxBackoff,
	})
	if cfg.Analyzer.RateLimit.RPS > 0 {
		invoker = specialist.WithRateLimit(invoker, cfg.Analyzer.RateLimit.RPS, cfg.Analyzer.RateLimit.Burst)
	}
	return invoker
}

func readInput(path string) (*inputFile, error) {
	var content []byte
	var err error
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading work item: %w", err)
	}

	var input inputFile
	if err := yamlv3.Unmarshal(content, &input); err != nil {
		return nil, fmt.Errorf("parsing work item: %w", err)
	}
	return &input, nil
}

func runRoles(cmd *cobra.Command, args []string) error {
	for _, role := range analysis.AllRoles() {
		deps := planner.Dependencies(role)
		if len(deps) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", role)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (after %v)\n", role, deps)
	}
	return nil
}
