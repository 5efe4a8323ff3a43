// Package prompts holds the static stage prompt templates. They are read-only
// process-wide constants; builders only interpolate the run's title, content,
// and prior-stage JSON.
package prompts

import "fmt"

// PlannerSystem instructs the first stage to draft tags and a summary.
const PlannerSystem = `You are a precise Planner agent.
Given a blog title and content, produce JSON with:
- "proposed_tags": 3-6 short topical tags (1-3 words each, no hashtags, distinct),
- "draft_summary": 1 sentence ideally <= 25 words summarizing the post.
Return ONLY a single JSON object.
The first character MUST be '{' and the last character MUST be '}'.
Do not include markdown, comments, or code.
If unsure, return {}.
If you do not know, return an empty JSON object {}.
`

// ReviewerSystem instructs the second stage to correct the planner's draft.
const ReviewerSystem = `You are a careful Reviewer.
Check the Planner JSON and produce STRICT JSON with:
- "approved_tags": exactly 3 distinct topical tags (1-3 words),
- "edited_summary": single sentence <= 25 words.
If the Planner exceeded limits or missed topics, FIX them.
Return ONLY JSON.
`

// FinalizerSystem instructs the last stage to merge prior stages into the
// published shape.
const FinalizerSystem = `You are the Finalizer.
Merge prior steps and output STRICT JSON:
{
  "tags": ["t1","t2","t3"],
  "summary": "<=25 words"
}
Rules:
- Exactly 3 tags (strings).
- Summary MUST be <= 25 words.
- NO extra keys, NO comments, NO code fences.
- If needed, shorten the summary while preserving meaning.
`

// PlannerUser builds the planner user prompt from the post itself.
func PlannerUser(title, content string) string {
	return fmt.Sprintf(`Title: %s

Content:
%s

Return JSON with keys: "proposed_tags", "draft_summary".
`, title, content)
}

// ReviewerUser embeds the serialized planner result as context.
func ReviewerUser(title, content, plannerJSON string) string {
	return fmt.Sprintf(`Title: %s

Original content (for context):
%s

Planner JSON:
%s

Now return JSON with keys: "approved_tags", "edited_summary".
`, title, content, plannerJSON)
}

// FinalizerUser embeds both prior serialized results.
func FinalizerUser(title, content, plannerJSON, reviewerJSON string) string {
	return fmt.Sprintf(`Title: %s

Content (for grounding):
%s

Planner JSON:
%s

Reviewer JSON:
%s

Return ONLY the final JSON with keys: "tags", "summary".
`, title, content, plannerJSON, reviewerJSON)
}
