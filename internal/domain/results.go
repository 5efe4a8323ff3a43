package domain

import (
	"fmt"
	"strings"
)

// MaxSummaryWords caps the published summary length.
const MaxSummaryWords = 25

// PublishTagCount is the exact number of tags in the published result.
const PublishTagCount = 3

// ValidationError reports a stage result that does not match its schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PlannerResult is the validated output of the planning stage. Tag count is
// left to the prompt contract; only presence and non-emptiness are enforced.
type PlannerResult struct {
	ProposedTags []string `json:"proposed_tags"`
	DraftSummary string   `json:"draft_summary"`
}

// ReviewerResult is the validated output of the reviewing stage.
type ReviewerResult struct {
	ApprovedTags  []string `json:"approved_tags"`
	EditedSummary string   `json:"edited_summary"`
}

// PublishResult is the final object. It is the only entity serialized to the
// external boundary, with exactly the "tags" and "summary" keys.
type PublishResult struct {
	Tags    []string `json:"tags"`
	Summary string   `json:"summary"`
}

// ParsePlanner validates a decoded JSON object against the planner schema.
func ParsePlanner(obj map[string]any) (PlannerResult, error) {
	tags, err := tagField(obj, "proposed_tags")
	if err != nil {
		return PlannerResult{}, err
	}
	if len(tags) == 0 {
		return PlannerResult{}, &ValidationError{Field: "proposed_tags", Reason: "must not be empty"}
	}

	summary, err := stringField(obj, "draft_summary")
	if err != nil {
		return PlannerResult{}, err
	}

	return PlannerResult{ProposedTags: tags, DraftSummary: summary}, nil
}

// ParseReviewer validates a decoded JSON object against the reviewer schema.
func ParseReviewer(obj map[string]any) (ReviewerResult, error) {
	tags, err := tagField(obj, "approved_tags")
	if err != nil {
		return ReviewerResult{}, err
	}
	if len(tags) != PublishTagCount {
		return ReviewerResult{}, &ValidationError{
			Field:  "approved_tags",
			Reason: fmt.Sprintf("must contain exactly %d items, got %d", PublishTagCount, len(tags)),
		}
	}

	summary, err := stringField(obj, "edited_summary")
	if err != nil {
		return ReviewerResult{}, err
	}

	return ReviewerResult{ApprovedTags: tags, EditedSummary: summary}, nil
}

// NewPublish builds the final result, enforcing the tag-count and
// summary-length invariants at construction time.
func NewPublish(tags []string, summary string) (PublishResult, error) {
	if len(tags) != PublishTagCount {
		return PublishResult{}, &ValidationError{
			Field:  "tags",
			Reason: fmt.Sprintf("must contain exactly %d items, got %d", PublishTagCount, len(tags)),
		}
	}

	trimmed := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return PublishResult{}, &ValidationError{Field: "tags", Reason: "entries must be non-empty strings"}
		}
		trimmed = append(trimmed, tag)
	}

	if n := WordCount(summary); n > MaxSummaryWords {
		return PublishResult{}, &ValidationError{
			Field:  "summary",
			Reason: fmt.Sprintf("must be <= %d words, got %d", MaxSummaryWords, n),
		}
	}

	return PublishResult{Tags: trimmed, Summary: summary}, nil
}

func tagField(obj map[string]any, field string) ([]string, error) {
	raw, ok := obj[field]
	if !ok {
		return nil, &ValidationError{Field: field, Reason: "missing field"}
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, &ValidationError{Field: field, Reason: "must be a list of strings"}
	}

	tags := make([]string, 0, len(list))
	for _, entry := range list {
		s, ok := entry.(string)
		if !ok {
			return nil, &ValidationError{Field: field, Reason: "entries must be strings"}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, &ValidationError{Field: field, Reason: "entries must be non-empty strings"}
		}
		tags = append(tags, s)
	}

	return tags, nil
}

func stringField(obj map[string]any, field string) (string, error) {
	raw, ok := obj[field]
	if !ok {
		return "", &ValidationError{Field: field, Reason: "missing field"}
	}

	s, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Field: field, Reason: "must be a string"}
	}

	return s, nil
}
