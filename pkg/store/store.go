// Package store persists interview setup and answer records in a document
// store. Writes inject store-assigned timestamps; failures always surface to
// the caller rather than being dropped.
package store

const (
	CollectionInterviews = "interviews"
	CollectionAnswers    = "answers"
)

// InterviewRecord is the persisted interview setup, keyed by interview id.
// Finalized is always false at creation; finalization happens elsewhere.
type InterviewRecord struct {
	Role          string
	Level         string
	Type          string
	TechStack     []string
	QuestionCount int
	UserID        string
	Finalized     bool
}

// AnswerRecord is one candidate answer, keyed by interview id plus sequence.
// The sequence number is caller-supplied and used as the document id, so a
// later write with the same sequence replaces the earlier one.
type AnswerRecord struct {
	Question string
	Answer   string
	Sequence int
}
