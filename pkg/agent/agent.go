// Package agent is the orchestration core for one interview session. It owns
// the session state machine and exposes the fixed set of tool operations an
// external reasoning driver invokes; persistence and generation are reached
// only through the injected gateways.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prepwise/interview-gateway/pkg/generation"
	"github.com/prepwise/interview-gateway/pkg/store"
)

// ClosingAnnouncement is spoken to the candidate after the generation
// endpoint has confirmed acceptance, immediately before the session ends.
const ClosingAnnouncement = "Great! I have generated your interview. You will now be redirected to begin."

// Store is the persistence surface the agent writes through.
type Store interface {
	// UpsertInterview merge-writes the record at id; an empty id creates a
	// new document and returns its generated identifier.
	UpsertInterview(ctx context.Context, id string, rec store.InterviewRecord) (string, error)
	// UpsertAnswer overwrites the answer document keyed by the record's
	// sequence number under the given interview.
	UpsertAnswer(ctx context.Context, interviewID string, rec store.AnswerRecord) error
}

// Generator triggers external question generation.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

type Dependencies struct {
	State     *SessionState
	Store     Store
	Generator Generator
	Logger    *slog.Logger

	// Announce delivers the closing announcement to the candidate.
	// Terminate closes the session transport. Both run only after the
	// generation endpoint has confirmed acceptance, in that order.
	Announce  func(text string)
	Terminate func()
}

type InterviewAgent struct {
	state     *SessionState
	store     Store
	generator Generator
	logger    *slog.Logger
	announce  func(string)
	terminate func()

	terminated bool
}

func New(deps Dependencies) (*InterviewAgent, error) {
	if deps.State == nil {
		return nil, fmt.Errorf("session state is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Announce == nil {
		deps.Announce = func(string) {}
	}
	if deps.Terminate == nil {
		deps.Terminate = func() {}
	}
	return &InterviewAgent{
		state:     deps.State,
		store:     deps.Store,
		generator: deps.Generator,
		logger:    deps.Logger,
		announce:  deps.Announce,
		terminate: deps.Terminate,
	}, nil
}

// State exposes the session state for the driver boundary. The agent remains
// the only writer.
func (a *InterviewAgent) State() *SessionState { return a.state }

// Terminated reports whether the session has been closed. Termination is
// one-way; every tool rejects calls afterwards.
func (a *InterviewAgent) Terminated() bool { return a.terminated }

type UserDetails struct {
	Role          string
	Level         string
	TechStack     string
	InterviewType string
	QuestionCount int
}

// StoreUserDetails persists the interview setup collected from the candidate
// and returns the interview identifier. The write merges into any existing
// document, so repeating the call with overlapping fields is safe.
func (a *InterviewAgent) StoreUserDetails(ctx context.Context, details UserDetails) (string, *Error) {
	if a.terminated {
		return "", NewError(ErrSessionClosed, "session has ended")
	}
	if a.state.UserID == "" {
		return "", NewError(ErrIdentityMissing, "missing user identity in session metadata")
	}

	rec := store.InterviewRecord{
		Role:          strings.TrimSpace(details.Role),
		Level:         strings.TrimSpace(details.Level),
		Type:          strings.TrimSpace(details.InterviewType),
		TechStack:     ParseTechStack(details.TechStack),
		QuestionCount: details.QuestionCount,
		UserID:        a.state.UserID,
		Finalized:     false,
	}

	id, err := a.store.UpsertInterview(ctx, a.state.InterviewID, rec)
	if err != nil {
		return "", &Error{Kind: ErrPersistenceFailure, Message: "failed to store interview setup", Detail: err.Error()}
	}
	if a.state.InterviewID == "" {
		a.state.InterviewID = id
	}
	a.state.MetadataComplete = true

	a.logger.Info("stored interview setup", "interview_id", a.state.InterviewID, "user_id", a.state.UserID)
	return a.state.InterviewID, nil
}

// RequestQuestionGeneration hands the setup off to the external generation
// service. On a confirmed accept it marks generation done, announces the
// close to the candidate, and terminates the session; this is a deliberate
// end-of-conversation action. On any failure the state is left untouched so
// the driver can decide whether to retry.
func (a *InterviewAgent) RequestQuestionGeneration(ctx context.Context, req generation.Request) (map[string]any, *Error) {
	if a.terminated {
		return nil, NewError(ErrSessionClosed, "session has ended")
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = a.state.UserID
	}

	result, err := a.generator.Generate(ctx, req)
	if err != nil {
		var statusErr *generation.StatusError
		if errors.As(err, &statusErr) {
			a.logger.Warn("generation rejected", "status", statusErr.Status)
			return nil, &Error{
				Kind:    ErrGenerationRejected,
				Message: fmt.Sprintf("interview generation failed (%d)", statusErr.Status),
				Detail:  statusErr.Body,
			}
		}
		a.logger.Warn("generation unreachable", "error", err)
		return nil, &Error{Kind: ErrGenerationUnreachable, Message: "failed to reach generation endpoint", Detail: err.Error()}
	}

	a.state.QuestionsGenerated = true
	// Questions are produced out of band; the conduct session fetches them
	// independently, so the local list is cleared rather than populated.
	a.state.QuestionList = nil

	a.logger.Info("interview generation triggered", "user_id", req.UserID, "interview_id", a.state.InterviewID)

	a.announce(ClosingAnnouncement)
	a.terminated = true
	a.terminate()

	response := map[string]any{"status": "triggered"}
	if result.Payload != nil {
		response["response"] = result.Payload
	} else {
		response["response"] = map[string]any{"raw": result.Raw}
	}
	return response, nil
}

type Answer struct {
	Question string
	Answer   string
	Sequence int
}

// SaveAnswer upserts the candidate's answer transcript for later feedback,
// keyed by sequence. Answer text is stored as given.
func (a *InterviewAgent) SaveAnswer(ctx context.Context, ans Answer) (map[string]any, *Error) {
	if a.terminated {
		return nil, NewError(ErrSessionClosed, "session has ended")
	}
	if a.state.InterviewID == "" {
		return nil, NewError(ErrNoActiveInterview, "no interview id; nothing to save")
	}

	rec := store.AnswerRecord{
		Question: ans.Question,
		Answer:   ans.Answer,
		Sequence: ans.Sequence,
	}
	if err := a.store.UpsertAnswer(ctx, a.state.InterviewID, rec); err != nil {
		return nil, &Error{Kind: ErrPersistenceFailure, Message: "failed to store answer", Detail: err.Error()}
	}
	if ans.Sequence > a.state.CurrentQuestionIndex {
		a.state.CurrentQuestionIndex = ans.Sequence
	}

	a.logger.Info("saved answer", "interview_id", a.state.InterviewID, "sequence", ans.Sequence)
	return map[string]any{"status": "stored"}, nil
}

// ParseTechStack normalizes a comma-delimited tech stack into an ordered set
// of trimmed, non-empty, deduplicated tags.
func ParseTechStack(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
