package app

import (
	"context"
	"fmt"
	"log/slog"

	"TagPress/internal/config"
	"TagPress/internal/infrastructure/llm"
	"TagPress/internal/logging"
	"TagPress/internal/ports"
	"TagPress/internal/usecase"
)

// Application wires configuration to the pipeline use case.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
}

// RunParams describes a single pipeline invocation.
type RunParams struct {
	Model  string
	Title  string
	Source ports.ContentSource
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	chatClient := llm.NewOllamaClient(cfg.Ollama)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Chat:   chatClient,
		Logger: baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline}
}

// Run loads the post content and executes one pipeline pass.
func (a *Application) Run(ctx context.Context, params RunParams) error {
	if params.Source == nil {
		return fmt.Errorf("no content source provided")
	}

	content, err := params.Source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	model := params.Model
	if model == "" {
		model = a.cfg.Ollama.Model
	}

	_, err = a.pipeline.Run(ctx, model, params.Title, content)
	return err
}
