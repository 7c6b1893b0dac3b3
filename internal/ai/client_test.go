package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator returns a scripted response instead of calling a model.
type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func testCandidates() []Candidate {
	return []Candidate{
		{LawyerID: uuid.New(), DisplayName: "Amina Odhiambo", Specialization: []string{"land law"}, Reputation: 40, CasesCompleted: 12},
		{LawyerID: uuid.New(), DisplayName: "Brian Mwangi", Specialization: []string{"family law"}, Reputation: 10, CasesCompleted: 3},
	}
}

func testMatchRequest() MatchRequest {
	return MatchRequest{
		Title:          "Eviction defense for informal settlement residents",
		Description:    "Forty families face eviction without a court order.",
		Category:       "land law",
		RequiredSkills: []string{"litigation", "land law"},
	}
}

func TestMatchLawyers_EmptyCandidates(t *testing.T) {
	gen := &fakeGenerator{}
	client := NewClient(gen)

	matches, err := client.MatchLawyers(context.Background(), testMatchRequest(), nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 0, gen.calls)
}

func TestMatchLawyers_RanksByScore(t *testing.T) {
	candidates := testCandidates()
	gen := &fakeGenerator{response: fmt.Sprintf(
		`{"matches":[{"lawyer_id":"%s","score":55,"reasoning":"partial overlap"},{"lawyer_id":"%s","score":90,"reasoning":"strong land law record"}]}`,
		candidates[1].LawyerID, candidates[0].LawyerID,
	)}
	client := NewClient(gen)

	matches, err := client.MatchLawyers(context.Background(), testMatchRequest(), candidates)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, candidates[0].LawyerID, matches[0].LawyerID)
	assert.Equal(t, 90, matches[0].Score)
	assert.Equal(t, 55, matches[1].Score)
}

func TestMatchLawyers_DropsUnknownIDs(t *testing.T) {
	candidates := testCandidates()
	gen := &fakeGenerator{response: fmt.Sprintf(
		`{"matches":[{"lawyer_id":"%s","score":80,"reasoning":"ok"},{"lawyer_id":"%s","score":99,"reasoning":"invented"}]}`,
		candidates[0].LawyerID, uuid.New(),
	)}
	client := NewClient(gen)

	matches, err := client.MatchLawyers(context.Background(), testMatchRequest(), candidates)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, candidates[0].LawyerID, matches[0].LawyerID)
}

func TestMatchLawyers_ClampsScores(t *testing.T) {
	candidates := testCandidates()
	gen := &fakeGenerator{response: fmt.Sprintf(
		`{"matches":[{"lawyer_id":"%s","score":150,"reasoning":"over"},{"lawyer_id":"%s","score":-20,"reasoning":"under"}]}`,
		candidates[0].LawyerID, candidates[1].LawyerID,
	)}
	client := NewClient(gen)

	matches, err := client.MatchLawyers(context.Background(), testMatchRequest(), candidates)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 100, matches[0].Score)
	assert.Equal(t, 0, matches[1].Score)
}

func TestMatchLawyers_MalformedJSON(t *testing.T) {
	gen := &fakeGenerator{response: "I think the best lawyer would be Amina because"}
	client := NewClient(gen)

	_, err := client.MatchLawyers(context.Background(), testMatchRequest(), testCandidates())
	require.Error(t, err)
	assert.Equal(t, ErrKindBadModelOutput, KindOf(err))
}

func TestMatchLawyers_CodeFencedJSON(t *testing.T) {
	candidates := testCandidates()
	gen := &fakeGenerator{response: fmt.Sprintf(
		"```json\n{\"matches\":[{\"lawyer_id\":\"%s\",\"score\":70,\"reasoning\":\"fits\"}]}\n```",
		candidates[0].LawyerID,
	)}
	client := NewClient(gen)

	matches, err := client.MatchLawyers(context.Background(), testMatchRequest(), candidates)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 70, matches[0].Score)
}

func TestMatchLawyers_GeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: &Error{Kind: ErrKindUnavailable, Message: "model unreachable"}}
	client := NewClient(gen)

	_, err := client.MatchLawyers(context.Background(), testMatchRequest(), testCandidates())
	require.Error(t, err)
	assert.Equal(t, ErrKindUnavailable, KindOf(err))
}

func TestAnalyzeDocument_Success(t *testing.T) {
	gen := &fakeGenerator{response: `{
		"summary": "A lease termination notice served without the statutory period.",
		"key_points": ["notice period is 14 days short"],
		"legal_issues": ["unlawful eviction"],
		"recommended_actions": ["file an objection"],
		"relevant_case_law": []
	}`}
	client := NewClient(gen)

	analysis, err := client.AnalyzeDocument(context.Background(), "NOTICE OF TERMINATION ...")
	require.NoError(t, err)
	assert.Contains(t, analysis.Summary, "lease termination")
	assert.Len(t, analysis.KeyPoints, 1)
}

func TestAnalyzeDocument_EmptyText(t *testing.T) {
	gen := &fakeGenerator{}
	client := NewClient(gen)

	_, err := client.AnalyzeDocument(context.Background(), "   \n ")
	require.Error(t, err)
	assert.Equal(t, ErrKindBadModelOutput, KindOf(err))
	assert.Equal(t, 0, gen.calls)
}

func TestAnalyzeDocument_MissingSummary(t *testing.T) {
	gen := &fakeGenerator{response: `{"key_points":["something"]}`}
	client := NewClient(gen)

	_, err := client.AnalyzeDocument(context.Background(), "contract text")
	require.Error(t, err)
	assert.Equal(t, ErrKindBadModelOutput, KindOf(err))
}

func TestAnalyzeDocument_MalformedJSON(t *testing.T) {
	gen := &fakeGenerator{response: `{"summary": "truncated`}
	client := NewClient(gen)

	_, err := client.AnalyzeDocument(context.Background(), "contract text")
	require.Error(t, err)
	assert.Equal(t, ErrKindBadModelOutput, KindOf(err))
}

func TestKindOf_UnknownError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}
