package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/msareview/internal/config"
	"github.com/dshills/msareview/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

type modelInfo struct {
	Provider string
	Models   []string
}

var knownModels = []modelInfo{
	{
		Provider: "openai",
		Models: []string{
			"gpt-4o-mini",
			"gpt-4o",
			"gpt-4.1-mini",
			"gpt-4.1",
		},
	},
	{
		Provider: "anthropic",
		Models: []string{
			"claude-sonnet-4-5",
			"claude-haiku-4-5",
			"claude-opus-4-1",
		},
	},
	{
		Provider: "gemini",
		Models: []string{
			"gemini-2.5-flash",
			"gemini-2.5-pro",
			"gemini-2.0-flash",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"llama3.3",
			"llama3.1",
			"qwen2.5",
			"mistral",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range knownModels {
			fmt.Fprintf(os.Stdout, "%s:\n", info.Provider)
			for _, m := range info.Models {
				fmt.Fprintf(os.Stdout, "  - %s\n", m)
			}
			fmt.Fprintln(os.Stdout)
		}
	},
}

var flagDoctorProviders string

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
	Long:  "Send a one-token request to each provider (comma-separated with --providers) and report whether it answers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}

		names := splitComma(flagDoctorProviders)
		if len(names) == 0 {
			names = []string{cfg.Provider}
		}

		for _, name := range names {
			model := cfg.Model
			if name != cfg.Provider {
				model = defaultModel(name)
			}
			checkProvider(cmd.Context(), name, model)
		}
		return nil
	},
}

// defaultModel returns the first known model for provider.
func defaultModel(provider string) string {
	for _, info := range knownModels {
		if info.Provider == provider && len(info.Models) > 0 {
			return info.Models[0]
		}
	}
	return ""
}

func checkProvider(ctx context.Context, name, model string) {
	fmt.Fprintf(os.Stdout, "Checking %s...\n", name)

	p, err := providers.New(ctx, name, model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		exitCode = ExitAuthError
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = p.Generate(ctx, providers.Request{
		System:    "Respond with exactly: ok",
		Prompt:    "ping",
		MaxTokens: 10,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return
	}

	fmt.Fprintf(os.Stdout, "OK: %s is configured and responding\n", p.Name())
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagDoctorProviders, "providers", "", "Providers to check (comma-separated)")
}
