package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/microreview/microreview/internal/config"
	"github.com/microreview/microreview/internal/github"
	"github.com/microreview/microreview/internal/llm"
	"github.com/microreview/microreview/internal/orchestrator"
	"github.com/microreview/microreview/internal/output"
	"github.com/microreview/microreview/internal/review"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagGroupBy string
	flagFormat  string
	flagOut     string
	flagFailOn  string
	flagPost    bool
	flagQuiet   bool
)

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to .microreview.yml (default: repository root)")
	cmd.Flags().StringVar(&flagGroupBy, "group-by", "", "Group findings by file, category, or none")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (markdown, json)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit non-zero on severity threshold (none, low, medium, high, critical)")
	cmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Suppress progress output")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagGroupBy != "" {
		cfg.GroupBy = flagGroupBy
	}
	if flagFailOn != "" {
		cfg.FailOn = flagFailOn
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a PR diff with the enabled micro-agents",
	Long:  "Analyze a PR diff with the enabled micro-agents. Use subcommands to specify the diff source.",
}

var analyzeDiffCmd = &cobra.Command{
	Use:   "diff [file]",
	Short: "Analyze a diff from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var diff string
		if len(args) == 1 && args[0] != "-" {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading diff: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			diff = string(data)
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			diff = string(data)
		}

		writeReport(cfg, runAnalysis(cfg, diff))
		return nil
	},
}

var analyzePRCmd = &cobra.Command{
	Use:   "pr <owner/repo> <number>",
	Short: "Fetch and analyze a pull request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		owner, repo, ok := strings.Cut(args[0], "/")
		if !ok || owner == "" || repo == "" {
			return fmt.Errorf("invalid repository %q: expected owner/repo", args[0])
		}
		prNumber, err := strconv.Atoi(args[1])
		if err != nil || prNumber <= 0 {
			return fmt.Errorf("invalid PR number %q", args[1])
		}

		client, err := github.NewClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx := context.Background()
		diff, err := client.GetPRDiff(ctx, owner, repo, prNumber)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		report := runAnalysis(cfg, diff)

		if flagPost {
			var comment strings.Builder
			md := &output.MarkdownWriter{}
			if err := md.Write(&comment, report); err != nil {
				fmt.Fprintf(os.Stderr, "Error rendering comment: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			if err := client.PostOrUpdateReview(ctx, owner, repo, prNumber, comment.String(), cfg.CommentMode); err != nil {
				fmt.Fprintf(os.Stderr, "Error posting comment: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stderr, "Posted review comment on %s/%s#%d\n", owner, repo, prNumber)
		}

		writeReport(cfg, report)
		return nil
	},
}

// runAnalysis wires provider, orchestrator, and aggregator. A provider error
// degrades to pattern-based analysis rather than failing the run.
func runAnalysis(cfg config.Config, diff string) *review.Report {
	provider, err := llm.New(cfg.Provider, cfg.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, falling back to pattern-based analysis\n", err)
	}

	orch := orchestrator.New(cfg, provider)
	if !flagQuiet {
		orch.Log = os.Stderr
	}

	findings := orch.Run(diff)
	return review.Aggregate(findings, cfg.GroupBy)
}

func writeReport(cfg config.Config, report *review.Report) {
	if err := output.WriteReport(report, flagFormat, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if report.HasSeverityAtOrAbove(cfg.FailOn) {
		exitCode = ExitFindings
	}
}

func init() {
	analyzeCmd.AddCommand(analyzeDiffCmd)
	analyzeCmd.AddCommand(analyzePRCmd)

	for _, cmd := range []*cobra.Command{analyzeDiffCmd, analyzePRCmd} {
		addAnalyzeFlags(cmd)
	}
	analyzePRCmd.Flags().BoolVar(&flagPost, "post", false, "Post the review comment to the pull request")
}
