package agent

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeCreate  Mode = "create"
	ModeConduct Mode = "conduct"
)

// SessionState is the mutable state scoped to one voice session. It is owned
// by a single InterviewAgent for the session's lifetime and is never
// persisted itself; only the derived interview and answer records are.
type SessionState struct {
	Mode Mode

	// InterviewID is immutable once assigned.
	InterviewID string
	UserID      string

	MetadataComplete   bool
	QuestionsGenerated bool

	// Conduct-mode progress cursor.
	CurrentQuestionIndex int
	QuestionList         []string
}

// NewSessionState initializes state from resolved metadata. Mode defaults to
// create. A conduct session without an interview identifier is a fatal
// configuration error: there is no interview to conduct, so the session must
// not proceed to accept tool calls.
func NewSessionState(md Metadata) (*SessionState, error) {
	mode := ModeCreate
	if strings.EqualFold(strings.TrimSpace(md.Mode), string(ModeConduct)) {
		mode = ModeConduct
	}
	if mode == ModeConduct && md.InterviewID == "" {
		return nil, fmt.Errorf("conduct session requires an interview id in metadata")
	}
	return &SessionState{
		Mode:        mode,
		InterviewID: md.InterviewID,
		UserID:      md.UserID,
	}, nil
}
