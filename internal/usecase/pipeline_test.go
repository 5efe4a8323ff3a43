package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"TagPress/internal/domain"
	"TagPress/internal/extract"
	"TagPress/internal/ports"
)

type fakeChat struct {
	responses []string
	requests  []ports.ChatRequest
}

func (f *fakeChat) Chat(_ context.Context, req ports.ChatRequest) (string, error) {
	f.requests = append(f.requests, req)
	i := len(f.requests) - 1
	if i >= len(f.responses) {
		return "", fmt.Errorf("unexpected call %d", i)
	}
	return f.responses[i], nil
}

const (
	plannerJSON  = `{"proposed_tags": ["clocks", "distributed systems", "lamport"], "draft_summary": "A post about clocks."}`
	reviewerJSON = `{"approved_tags": ["Lamport Clocks", "Distributed Systems", "Ordering"], "edited_summary": "Explains Lamport clocks for ordering events in distributed systems."}`
)

func TestRunFinalizerProseFallsBackToReviewer(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []string{
		plannerJSON,
		reviewerJSON,
		"I could not produce JSON this time, sorry about that.",
	}}
	var out bytes.Buffer
	p := NewPipeline(PipelineDeps{Chat: chat, Out: &out})

	publish, err := p.Run(context.Background(), "smollm:1.7b", "Lamport Clocks", "body")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantTags := []string{"Lamport Clocks", "Distributed Systems", "Ordering"}
	for i, tag := range wantTags {
		if publish.Tags[i] != tag {
			t.Fatalf("tag %d = %q, want %q", i, publish.Tags[i], tag)
		}
	}
	if publish.Summary != "Explains Lamport clocks for ordering events in distributed systems." {
		t.Fatalf("unexpected summary: %q", publish.Summary)
	}

	if len(chat.requests) != 3 {
		t.Fatalf("expected 3 model calls, got %d", len(chat.requests))
	}
	if chat.requests[0].Temperature != 0.2 || chat.requests[1].Temperature != 0.2 {
		t.Fatalf("planner/reviewer temperature mismatch: %v", chat.requests)
	}
	if chat.requests[2].Temperature != 0.1 {
		t.Fatalf("finalizer temperature = %v, want 0.1", chat.requests[2].Temperature)
	}
	if chat.requests[1].User == "" || !strings.Contains(chat.requests[1].User, `"proposed_tags"`) {
		t.Fatal("reviewer prompt should embed the planner JSON")
	}
	if !strings.Contains(chat.requests[2].User, `"approved_tags"`) {
		t.Fatal("finalizer prompt should embed the reviewer JSON")
	}
}

func TestRunRepairsDuplicateTagsAndLongSummary(t *testing.T) {
	t.Parallel()

	words := make([]string, 30)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i+1)
	}
	longSummary := strings.Join(words, " ")

	finalizer := fmt.Sprintf(`{"tags": ["a", "a", "b"], "summary": %q}`, longSummary)
	reviewer := `{"approved_tags": ["A", "B", "C"], "edited_summary": "fine."}`

	chat := &fakeChat{responses: []string{plannerJSON, reviewer, finalizer}}
	var out bytes.Buffer
	p := NewPipeline(PipelineDeps{Chat: chat, Out: &out})

	publish, err := p.Run(context.Background(), "m", "t", "c")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{"a", "b", "C"}
	for i, tag := range want {
		if publish.Tags[i] != tag {
			t.Fatalf("tags = %v, want %v", publish.Tags, want)
		}
	}

	if got := domain.WordCount(publish.Summary); got != 25 {
		t.Fatalf("summary word count = %d, want 25", got)
	}
	if !strings.HasPrefix(publish.Summary, "w1 w2 ") || !strings.HasSuffix(publish.Summary, "w25") {
		t.Fatalf("unexpected truncated summary: %q", publish.Summary)
	}
}

func TestRunPlannerProseAborts(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []string{"pure prose with no braces at all"}}
	var out bytes.Buffer
	p := NewPipeline(PipelineDeps{Chat: chat, Out: &out})

	_, err := p.Run(context.Background(), "m", "t", "c")
	if !errors.Is(err, extract.ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
	if len(chat.requests) != 1 {
		t.Fatalf("reviewer should not run after planner failure, got %d calls", len(chat.requests))
	}
}

func TestRunReviewerValidationAborts(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []string{
		plannerJSON,
		`{"approved_tags": ["only", "two"], "edited_summary": "s"}`,
	}}
	var out bytes.Buffer
	p := NewPipeline(PipelineDeps{Chat: chat, Out: &out})

	_, err := p.Run(context.Background(), "m", "t", "c")
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(chat.requests) != 2 {
		t.Fatalf("finalizer should not run after reviewer failure, got %d calls", len(chat.requests))
	}
}

func TestRunOutputContract(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []string{
		plannerJSON,
		reviewerJSON,
		`{"tags": ["One", "Two", "Three"], "summary": "Done."}`,
	}}
	var out bytes.Buffer
	p := NewPipeline(PipelineDeps{Chat: chat, Out: &out})

	if _, err := p.Run(context.Background(), "m", "t", "c"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	text := out.String()
	for _, header := range []string{
		"=== Planner output (raw) ===",
		"=== Reviewer output (raw) ===",
		"=== Finalized Output (raw) ===",
		"=== Publish output (strict JSON) ===",
	} {
		if !strings.Contains(text, header) {
			t.Fatalf("output missing header %q", header)
		}
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	final := lines[len(lines)-1]

	var decoded map[string]any
	if err := json.Unmarshal([]byte(final), &decoded); err != nil {
		t.Fatalf("final line is not JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("final object must have exactly 2 keys, got %v", decoded)
	}
	if _, ok := decoded["tags"]; !ok {
		t.Fatal("final object missing tags")
	}
	if _, ok := decoded["summary"]; !ok {
		t.Fatal("final object missing summary")
	}
}

func TestRepairTags(t *testing.T) {
	t.Parallel()

	approved := []string{"A", "B", "C"}

	cases := []struct {
		name      string
		candidate any
		want      []string
	}{
		{"missing", nil, []string{"A", "B", "C"}},
		{"empty list", []any{}, []string{"A", "B", "C"}},
		{"dedup and top up", []any{"a", "a", "b"}, []string{"a", "b", "C"}},
		{"too many", []any{"x", "y", "z", "q"}, []string{"x", "y", "z"}},
		{"blank entries skipped", []any{" ", "x", ""}, []string{"x", "A", "B"}},
		{"scalar coerced", "solo", []string{"solo", "A", "B"}},
		{"numbers coerced", []any{1.0, 2.0, 3.0}, []string{"1", "2", "3"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := repairTags(tc.candidate, approved)
			if len(got) != len(tc.want) {
				t.Fatalf("repairTags = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("repairTags = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestRepairSummary(t *testing.T) {
	t.Parallel()

	if got := repairSummary("  short and sweet  ", "fallback"); got != "short and sweet" {
		t.Fatalf("expected trim only, got %q", got)
	}

	if got := repairSummary(nil, "the reviewer wrote this"); got != "the reviewer wrote this" {
		t.Fatalf("expected reviewer fallback, got %q", got)
	}

	long := strings.TrimSpace(strings.Repeat("word ", 30))
	got := repairSummary(long, "fallback")
	if domain.WordCount(got) != 25 {
		t.Fatalf("expected 25 words, got %d (%q)", domain.WordCount(got), got)
	}
}

func TestRepairFallsBackWhenReviewerTagsCollide(t *testing.T) {
	t.Parallel()

	// Case-insensitive dedupe collapses the reviewer backstop below three, so
	// repair must hand back the reviewer's own validated list untouched.
	reviewer := domain.ReviewerResult{
		ApprovedTags:  []string{"Go", "go", "GO"},
		EditedSummary: "fine.",
	}

	publish := repair(map[string]any{}, reviewer)
	if len(publish.Tags) != 3 {
		t.Fatalf("expected 3 tags from fallback, got %v", publish.Tags)
	}
	if publish.Tags[0] != "Go" || publish.Tags[1] != "go" || publish.Tags[2] != "GO" {
		t.Fatalf("expected reviewer tags verbatim, got %v", publish.Tags)
	}
	if publish.Summary != "fine." {
		t.Fatalf("unexpected summary: %q", publish.Summary)
	}
}
