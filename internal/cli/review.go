package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/msareview/internal/app"
	"github.com/dshills/msareview/internal/config"
	"github.com/dshills/msareview/internal/output"
	"github.com/dshills/msareview/internal/playbook"
	"github.com/dshills/msareview/internal/review"
)

// Shared review flags
var (
	flagProvider    string
	flagModel       string
	flagStrategy    string
	flagTemperature string
	flagMaxTokens   int
	flagFormat      string
	flagOut         string
	flagFailOn      int
	flagMaxFindings int
	flagReduceLimit int
	flagSearchK     int
	flagPlaybook    string
	flagTemplates   string
	flagSteps       bool
	flagNoColor     bool
	flagNoRedact    bool
	flagNoCache     bool
	flagQuiet       bool
)

func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagStrategy, "strategy", "", "Review strategy (single-shot, map-rerank, map-reduce)")
	cmd.Flags().StringVar(&flagTemperature, "temperature", "", "Sampling temperature (0-2)")
	cmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Maximum tokens per model reply")
	cmd.Flags().IntVar(&flagMaxFindings, "max-findings", 0, "Maximum number of findings")
	cmd.Flags().IntVar(&flagReduceLimit, "reduce-limit", 0, "Issues requested by the map-reduce combine step")
	cmd.Flags().IntVar(&flagSearchK, "k", 0, "Playbook chunks retrieved per document turn")
	cmd.Flags().StringVar(&flagPlaybook, "playbook", "", "Playbook path or s3://bucket/key")
	cmd.Flags().StringVar(&flagTemplates, "templates", "", "YAML prompt template pack")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable redaction of personal data and secrets (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the reply cache")
}

func addReviewFlags(cmd *cobra.Command) {
	addProviderFlags(cmd)
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&flagFailOn, "fail-on", 0, "Exit 1 when a finding scores at or above this (1-100)")
	cmd.Flags().BoolVar(&flagSteps, "steps", false, "Include intermediate model calls in the output")
	cmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable coloured text output")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagStrategy != "" {
		m["strategy"] = flagStrategy
	}
	if flagTemperature != "" {
		m["temperature"] = flagTemperature
	}
	if flagMaxTokens > 0 {
		m["maxTokens"] = fmt.Sprintf("%d", flagMaxTokens)
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn > 0 {
		m["failOn"] = fmt.Sprintf("%d", flagFailOn)
	}
	if flagMaxFindings > 0 {
		m["maxFindings"] = fmt.Sprintf("%d", flagMaxFindings)
	}
	if flagReduceLimit > 0 {
		m["reduceLimit"] = fmt.Sprintf("%d", flagReduceLimit)
	}
	if flagSearchK > 0 {
		m["searchK"] = fmt.Sprintf("%d", flagSearchK)
	}
	if flagPlaybook != "" {
		m["playbook"] = flagPlaybook
	}
	if flagTemplates != "" {
		m["templatesFile"] = flagTemplates
	}
	if flagNoRedact {
		m["redact"] = "false"
	}
	if flagNoCache {
		m["cache"] = "false"
	}
	return m
}

// loadConfig builds the effective config from flags.
func loadConfig() (config.Config, bool) {
	return loadConfigWith(buildOverrides())
}

func loadConfigWith(overrides map[string]string) (config.Config, bool) {
	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return config.Config{}, false
	}
	if !cfg.Privacy.Redact {
		fmt.Fprintln(os.Stderr, "WARNING: redaction is disabled")
	}
	return cfg, true
}

func newApp(ctx context.Context, cfg config.Config) (*app.App, bool) {
	a, err := app.New(ctx, cfg, app.Options{Logger: logger, KeepSteps: flagSteps})
	if err != nil {
		fail(err)
		return nil, false
	}
	return a, true
}

// writeResult prints res and applies the fail-on threshold.
func writeResult(res *review.Result, cfg config.Config) {
	opts := output.Options{
		Color: !flagNoColor && flagOut == "" && os.Getenv("NO_COLOR") == "",
		Steps: flagSteps,
	}
	if err := output.WriteResult(res, cfg.Format, flagOut, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if cfg.FailOn > 0 && review.MeetsThreshold(res.Findings, cfg.FailOn) {
		exitCode = ExitFindings
	}
}

// readSection reads the section from a file argument, or stdin when the
// argument is absent or "-".
func readSection(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review MSA text",
	Long:  "Review MSA text against the playbook. Use subcommands to choose a single section or a whole draft.",
}

var flagSectionText string

var reviewSectionCmd = &cobra.Command{
	Use:   "section [file|-]",
	Short: "Review one MSA section from a file, --text, or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := loadConfig()
		if !ok {
			return nil
		}

		section := flagSectionText
		if section == "" {
			s, err := readSection(args)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitUsageError
				return nil
			}
			section = s
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, ok := newApp(ctx, cfg)
		if !ok {
			return nil
		}
		defer a.Close()

		res, err := a.ReviewSection(ctx, section)
		if err != nil {
			fail(err)
			return nil
		}
		writeResult(res, cfg)
		return nil
	},
}

var reviewDocumentCmd = &cobra.Command{
	Use:   "document <file>",
	Short: "Review a whole MSA draft (.docx, .txt, or s3://bucket/key) turn by turn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := loadConfig()
		if !ok {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		draft, err := playbook.Load(ctx, args[0], playbook.LoadOptions{S3: playbook.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		}})
		if err != nil {
			fail(&review.InputError{Field: "document", Reason: err.Error()})
			return nil
		}

		a, ok := newApp(ctx, cfg)
		if !ok {
			return nil
		}
		defer a.Close()

		res, err := a.ReviewDocument(ctx, draft.Paragraphs, func(p review.Progress) {
			if !flagQuiet {
				fmt.Fprintln(os.Stderr, p.String())
			}
		})
		if err != nil {
			fail(err)
			return nil
		}
		writeResult(res, cfg)
		return nil
	},
}

func init() {
	addReviewFlags(reviewSectionCmd)
	reviewSectionCmd.Flags().StringVar(&flagSectionText, "text", "", "Section text (instead of a file or stdin)")

	addReviewFlags(reviewDocumentCmd)
	reviewDocumentCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Do not print progress")

	reviewCmd.AddCommand(reviewSectionCmd)
	reviewCmd.AddCommand(reviewDocumentCmd)
}

// splitComma splits a comma-separated flag value, dropping blanks.
func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
