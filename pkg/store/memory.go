package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory document store with the same merge and upsert
// semantics as the Firestore implementation. It backs tests and local runs
// without credentials.
type Memory struct {
	mu         sync.Mutex
	interviews map[string]map[string]any
	answers    map[string]map[string]map[string]any
	now        func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		interviews: make(map[string]map[string]any),
		answers:    make(map[string]map[string]map[string]any),
		now:        time.Now,
	}
}

func (m *Memory) UpsertInterview(ctx context.Context, id string, rec InterviewRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	doc, ok := m.interviews[id]
	if !ok {
		doc = make(map[string]any)
		m.interviews[id] = doc
	}
	for k, v := range interviewFields(rec) {
		doc[k] = v
	}
	doc["createdAt"] = m.now()
	return id, nil
}

func (m *Memory) UpsertAnswer(ctx context.Context, interviewID string, rec AnswerRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if interviewID == "" {
		return fmt.Errorf("interview id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	byID, ok := m.answers[interviewID]
	if !ok {
		byID = make(map[string]map[string]any)
		m.answers[interviewID] = byID
	}
	doc := answerFields(rec)
	doc["createdAt"] = m.now()
	byID[strconv.Itoa(rec.Sequence)] = doc
	return nil
}

func (m *Memory) Close() error { return nil }

// Interview returns a copy of the stored interview document, if any.
func (m *Memory) Interview(id string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.interviews[id]
	if !ok {
		return nil, false
	}
	return copyDoc(doc), true
}

// Answer returns a copy of the stored answer document for one sequence.
func (m *Memory) Answer(interviewID string, sequence int) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.answers[interviewID]
	if !ok {
		return nil, false
	}
	doc, ok := byID[strconv.Itoa(sequence)]
	if !ok {
		return nil, false
	}
	return copyDoc(doc), true
}

// AnswerCount reports how many answer documents exist for an interview.
func (m *Memory) AnswerCount(interviewID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.answers[interviewID])
}

func copyDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
