package ai

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorKind classifies AI failures so handlers can map them without string
// matching.
type ErrorKind string

const (
	// ErrKindUnavailable covers transport and quota failures of the model API.
	ErrKindUnavailable ErrorKind = "unavailable"
	// ErrKindBadModelOutput means the model answered but not with the agreed
	// JSON schema. The call fails as a whole; nothing is guessed or repaired.
	ErrKindBadModelOutput ErrorKind = "bad_model_output"
	// ErrKindTimeout means the per-call deadline elapsed.
	ErrKindTimeout ErrorKind = "timeout"
)

// Error is the typed failure returned at the AI boundary. Malformed model
// output becomes a value of this type instead of an exception escaping into
// the render path.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ai: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("ai: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf extracts the error kind, or empty if err is not an AI error.
func KindOf(err error) ErrorKind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return ""
}

// Match is one ranked candidate from lawyer matching.
type Match struct {
	LawyerID  uuid.UUID `json:"lawyer_id"`
	Score     int       `json:"score"`
	Reasoning string    `json:"reasoning"`
}

// DocumentAnalysis is the structured result of a document analysis call.
type DocumentAnalysis struct {
	Summary            string   `json:"summary"`
	KeyPoints          []string `json:"key_points"`
	LegalIssues        []string `json:"legal_issues"`
	RecommendedActions []string `json:"recommended_actions"`
	RelevantCaseLaw    []string `json:"relevant_case_law"`
}
