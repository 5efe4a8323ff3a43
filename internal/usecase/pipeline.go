package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"TagPress/internal/domain"
	"TagPress/internal/extract"
	"TagPress/internal/ports"
	"TagPress/internal/prompts"
)

// Stage sampling temperatures. The finalizer runs coldest since its output
// must match the published shape.
const (
	plannerTemperature   = 0.2
	reviewerTemperature  = 0.2
	finalizerTemperature = 0.1
)

// PipelineDeps wires the driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Chat   ports.ChatClient
	Out    io.Writer
	Logger *slog.Logger
}

// Pipeline runs the three-stage tagging workflow: plan, review, finalize,
// then deterministic repair of the published object.
type Pipeline struct {
	chat   ports.ChatClient
	out    io.Writer
	logger *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{chat: deps.Chat, out: out, logger: logger}
}

// Run executes the full pipeline for one post. Planner and reviewer failures
// abort the run; the finalizer degrades to a reviewer-derived fallback and the
// repair step guarantees a valid published object.
func (p *Pipeline) Run(ctx context.Context, model, title, content string) (domain.PublishResult, error) {
	planner, err := p.runPlanner(ctx, model, title, content)
	if err != nil {
		return domain.PublishResult{}, err
	}
	plannerJSON := mustJSON(planner)

	reviewer, err := p.runReviewer(ctx, model, title, content, plannerJSON)
	if err != nil {
		return domain.PublishResult{}, err
	}
	reviewerJSON := mustJSON(reviewer)

	finalObj, err := p.runFinalizer(ctx, model, title, content, plannerJSON, reviewerJSON)
	if err != nil {
		return domain.PublishResult{}, err
	}

	publish := repair(finalObj, reviewer)

	fmt.Fprintln(p.out, "\n=== Publish output (strict JSON) ===")
	fmt.Fprintln(p.out, mustJSON(publish))

	return publish, nil
}

func (p *Pipeline) runPlanner(ctx context.Context, model, title, content string) (domain.PlannerResult, error) {
	raw, err := p.chat.Chat(ctx, ports.ChatRequest{
		Model:       model,
		System:      prompts.PlannerSystem,
		User:        prompts.PlannerUser(title, content),
		Temperature: plannerTemperature,
	})
	if err != nil {
		return domain.PlannerResult{}, fmt.Errorf("planner: %w", err)
	}

	fmt.Fprintln(p.out, "=== Planner output (raw) ===")
	fmt.Fprintln(p.out, strings.TrimSpace(raw))

	obj, err := extract.JSONObject(raw)
	if err != nil {
		p.logger.Error("planner JSON parse failed", "error", err)
		return domain.PlannerResult{}, fmt.Errorf("planner: %w", err)
	}

	planner, err := domain.ParsePlanner(obj)
	if err != nil {
		p.logger.Error("planner validation failed", "error", err)
		return domain.PlannerResult{}, fmt.Errorf("planner: %w", err)
	}

	return planner, nil
}

func (p *Pipeline) runReviewer(ctx context.Context, model, title, content, plannerJSON string) (domain.ReviewerResult, error) {
	raw, err := p.chat.Chat(ctx, ports.ChatRequest{
		Model:       model,
		System:      prompts.ReviewerSystem,
		User:        prompts.ReviewerUser(title, content, plannerJSON),
		Temperature: reviewerTemperature,
	})
	if err != nil {
		return domain.ReviewerResult{}, fmt.Errorf("reviewer: %w", err)
	}

	fmt.Fprintln(p.out, "\n=== Reviewer output (raw) ===")
	fmt.Fprintln(p.out, strings.TrimSpace(raw))

	obj, err := extract.JSONObject(raw)
	if err != nil {
		p.logger.Error("reviewer JSON parse failed", "error", err)
		return domain.ReviewerResult{}, fmt.Errorf("reviewer: %w", err)
	}

	reviewer, err := domain.ParseReviewer(obj)
	if err != nil {
		p.logger.Error("reviewer validation failed", "error", err)
		return domain.ReviewerResult{}, fmt.Errorf("reviewer: %w", err)
	}

	return reviewer, nil
}

// runFinalizer returns the extracted object or nil when the finalizer output
// is unusable; the repair step substitutes reviewer data either way. Only a
// transport failure is an error here.
func (p *Pipeline) runFinalizer(ctx context.Context, model, title, content, plannerJSON, reviewerJSON string) (map[string]any, error) {
	raw, err := p.chat.Chat(ctx, ports.ChatRequest{
		Model:       model,
		System:      prompts.FinalizerSystem,
		User:        prompts.FinalizerUser(title, content, plannerJSON, reviewerJSON),
		Temperature: finalizerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("finalizer: %w", err)
	}

	fmt.Fprintln(p.out, "\n=== Finalized Output (raw) ===")
	fmt.Fprintln(p.out, strings.TrimSpace(raw))

	obj, err := extract.JSONObject(raw)
	if err != nil {
		p.logger.Warn("finalizer output unparseable, falling back to reviewer result", "error", err)
		return nil, nil
	}

	return obj, nil
}

// repair forces the published invariants to hold regardless of what the
// finalizer produced. The reviewer result, validated upstream, is the
// backstop for both fields.
func repair(finalObj map[string]any, reviewer domain.ReviewerResult) domain.PublishResult {
	tags := repairTags(finalObj["tags"], reviewer.ApprovedTags)
	summary := repairSummary(finalObj["summary"], reviewer.EditedSummary)

	publish, err := domain.NewPublish(tags, summary)
	if err == nil {
		return publish
	}

	// Last resort: the reviewer's own tags, and its summary unless that too
	// overflows the word cap. Reviewer fields were validated at construction,
	// so this cannot fail.
	fallbackSummary := reviewer.EditedSummary
	if domain.WordCount(fallbackSummary) > domain.MaxSummaryWords {
		fallbackSummary = truncateWords(summary, domain.MaxSummaryWords)
	}
	publish, _ = domain.NewPublish(reviewer.ApprovedTags[:domain.PublishTagCount], fallbackSummary)
	return publish
}

// repairTags yields up to three unique, trimmed tags: finalizer tags first,
// deduplicated case-insensitively in first-seen order, topped up from the
// reviewer's approved list.
func repairTags(candidate any, approved []string) []string {
	raw := coerceList(candidate)
	if len(raw) == 0 {
		raw = make([]any, len(approved))
		for i, t := range approved {
			raw[i] = t
		}
	}

	seen := make(map[string]bool)
	uniq := make([]string, 0, domain.PublishTagCount)
	for _, entry := range raw {
		tag := strings.TrimSpace(coerceString(entry))
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		uniq = append(uniq, tag)
	}

	for _, tag := range approved {
		if len(uniq) >= domain.PublishTagCount {
			break
		}
		if seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		uniq = append(uniq, tag)
	}

	if len(uniq) > domain.PublishTagCount {
		uniq = uniq[:domain.PublishTagCount]
	}
	return uniq
}

func repairSummary(candidate any, reviewerSummary string) string {
	summary := strings.TrimSpace(coerceString(candidate))
	if summary == "" {
		summary = strings.TrimSpace(reviewerSummary)
	}

	if domain.WordCount(summary) > domain.MaxSummaryWords {
		summary = strings.TrimRight(truncateWords(summary, domain.MaxSummaryWords), " ,;:—-")
	}
	return summary
}

func truncateWords(s string, n int) string {
	tokens := domain.WordTokens(s)
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return strings.Join(tokens, " ")
}

func coerceList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	if v == nil {
		return nil
	}
	return []any{v}
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

// mustJSON serializes without HTML escaping so summaries reach stdout
// verbatim.
func mustJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimSpace(buf.String())
}
