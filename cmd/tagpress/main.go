package main

import (
	"os"

	"github.com/spf13/cobra"

	"TagPress/internal/app"
	"TagPress/internal/config"
	"TagPress/internal/infrastructure/content"
	"TagPress/internal/logging"
	"TagPress/internal/ports"
)

var (
	configPath  string
	modelName   string
	title       string
	contentText string
	contentFile string
	contentURL  string
)

var rootCmd = &cobra.Command{
	Use:   "tagpress",
	Short: "Tag and summarize a blog post with a local LLM",
	Long: `tagpress runs a post through a Planner, a Reviewer, and a Finalizer stage
against a local Ollama server and prints a strict JSON result with exactly
three topical tags and a summary of at most 25 words.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(configPath)
		logger := logging.New(cfg.Logging.Level)

		var source ports.ContentSource
		switch {
		case contentText != "":
			source = content.NewLiteralSource(contentText)
		case contentFile != "":
			source = content.NewFileSource(contentFile)
		default:
			source = content.NewURLSource(contentURL, nil)
		}

		application := app.New(cfg, logger)
		return application.Run(cmd.Context(), app.RunParams{
			Model:  modelName,
			Title:  title,
			Source: source,
		})
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&modelName, "model", "", "Ollama model name (default from config, smollm:1.7b)")
	rootCmd.Flags().StringVar(&title, "title", "", "blog post title")
	rootCmd.Flags().StringVar(&contentText, "content", "", "raw blog content text")
	rootCmd.Flags().StringVar(&contentFile, "content-file", "", "path to a UTF-8 text file with blog content")
	rootCmd.Flags().StringVar(&contentURL, "content-url", "", "URL of a page to extract blog content from")

	_ = rootCmd.MarkFlagRequired("title")
	rootCmd.MarkFlagsOneRequired("content", "content-file", "content-url")
	rootCmd.MarkFlagsMutuallyExclusive("content", "content-file", "content-url")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
