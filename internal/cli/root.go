package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/msareview/internal/config"
	"github.com/dshills/msareview/internal/logging"
	"github.com/dshills/msareview/internal/providers"
	"github.com/dshills/msareview/internal/review"
)

const version = "1.0.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
	ExitParseError   = 5
)

var (
	flagVerbose  bool
	flagLogLevel string
	flagLogJSON  bool
	flagEnvFile  string
)

// logger is replaced in PersistentPreRunE once flags are parsed.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "msareview",
	Short: "Review MSA contract language against a playbook",
	Long: "msareview checks Master Services Agreement text against a playbook of acceptable and " +
		"unacceptable terms using an LLM provider, and emits scored findings with deterministic exit codes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(flagEnvFile); err != nil {
			return err
		}
		l, err := logging.New(logging.Options{Level: flagLogLevel, Verbose: flagVerbose, JSON: flagLogJSON})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// exitFor maps a pipeline error to an exit code.
func exitFor(err error) int {
	if providers.IsAuthError(err) {
		return ExitAuthError
	}
	switch review.Kind(err) {
	case review.KindParse:
		return ExitParseError
	case review.KindInput:
		return ExitUsageError
	default:
		return ExitRuntimeError
	}
}

// fail reports err on stderr, tagged with its kind, and records the exit code.
func fail(err error) {
	kind := string(review.Kind(err))
	if providers.IsAuthError(err) {
		kind = "auth"
	}
	fmt.Fprintf(os.Stderr, "Error (%s): %v\n", kind, err)
	exitCode = exitFor(err)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print msareview version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "msareview version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file with provider credentials")
}
