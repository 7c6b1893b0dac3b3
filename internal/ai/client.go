package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const maxDocumentChars = 30000

// Candidate is the lawyer profile facts offered to the matcher. Only data the
// caller already holds goes into the prompt; the model never sees emails or
// account IDs.
type Candidate struct {
	LawyerID       uuid.UUID `json:"lawyer_id"`
	DisplayName    string    `json:"display_name"`
	Specialization []string  `json:"specialization"`
	Reputation     int       `json:"reputation"`
	CasesCompleted int       `json:"cases_completed"`
}

// MatchRequest describes the bounty being matched.
type MatchRequest struct {
	Title          string
	Description    string
	Category       string
	RequiredSkills []string
}

// Client runs the matching and analysis prompts against a Generator.
type Client struct {
	generator Generator
}

func NewClient(generator Generator) *Client {
	return &Client{generator: generator}
}

// MatchLawyers ranks candidates against a bounty. An empty candidate list is
// answered locally with an empty ranking; the model is not called.
func (c *Client) MatchLawyers(ctx context.Context, req MatchRequest, candidates []Candidate) ([]Match, error) {
	if len(candidates) == 0 {
		return []Match{}, nil
	}

	prompt, err := buildMatchPrompt(req, candidates)
	if err != nil {
		return nil, err
	}

	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Matches []Match `json:"matches"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, &Error{Kind: ErrKindBadModelOutput, Message: "matching response is not valid JSON", Cause: err}
	}

	known := make(map[uuid.UUID]bool, len(candidates))
	for _, cand := range candidates {
		known[cand.LawyerID] = true
	}

	matches := make([]Match, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		// Drop hallucinated IDs rather than failing the whole call.
		if !known[m.LawyerID] {
			continue
		}
		if m.Score < 0 {
			m.Score = 0
		}
		if m.Score > 100 {
			m.Score = 100
		}
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches, nil
}

// AnalyzeDocument summarizes legal document text into a structured review.
func (c *Client) AnalyzeDocument(ctx context.Context, text string) (*DocumentAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Kind: ErrKindBadModelOutput, Message: "document text is empty"}
	}
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}

	raw, err := c.generator.Generate(ctx, buildAnalysisPrompt(text))
	if err != nil {
		return nil, err
	}

	var analysis DocumentAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &analysis); err != nil {
		return nil, &Error{Kind: ErrKindBadModelOutput, Message: "analysis response is not valid JSON", Cause: err}
	}
	if analysis.Summary == "" {
		return nil, &Error{Kind: ErrKindBadModelOutput, Message: "analysis response is missing a summary"}
	}
	return &analysis, nil
}

func buildMatchPrompt(req MatchRequest, candidates []Candidate) (string, error) {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("ai: marshal candidates: %w", err)
	}

	var b strings.Builder
	b.WriteString("You rank lawyers for a pro-bono legal case. Respond with JSON only, ")
	b.WriteString(`shaped as {"matches":[{"lawyer_id":"<uuid>","score":<0-100>,"reasoning":"<one sentence>"}]}.`)
	b.WriteString(" Rank every candidate. Use only the lawyer_id values given below.\n\n")
	b.WriteString("Case:\n")
	fmt.Fprintf(&b, "- title: %s\n", req.Title)
	fmt.Fprintf(&b, "- category: %s\n", req.Category)
	fmt.Fprintf(&b, "- required skills: %s\n", strings.Join(req.RequiredSkills, ", "))
	fmt.Fprintf(&b, "- description: %s\n\n", req.Description)
	b.WriteString("Candidates:\n")
	b.Write(payload)
	return b.String(), nil
}

func buildAnalysisPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You review legal documents for a legal-aid organization. Respond with JSON only, shaped as ")
	b.WriteString(`{"summary":"...","key_points":[],"legal_issues":[],"recommended_actions":[],"relevant_case_law":[]}.`)
	b.WriteString("\n\nDocument:\n")
	b.WriteString(text)
	return b.String()
}

// stripCodeFence removes a ```json ... ``` wrapper that models add despite the
// JSON response mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
