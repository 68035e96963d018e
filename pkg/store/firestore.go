package store

import (
	"context"
	"fmt"
	"strconv"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// Firestore persists records in Cloud Firestore: interviews in the
// "interviews" collection, answers in an "answers" sub-collection keyed by
// the string form of the sequence number. createdAt is a server timestamp.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(ctx context.Context, creds Credentials) (*Firestore, error) {
	if creds.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	var opts []option.ClientOption
	switch {
	case len(creds.JSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(creds.JSON))
	case creds.File != "":
		opts = append(opts, option.WithCredentialsFile(creds.File))
	default:
		return nil, fmt.Errorf("firestore credentials are required")
	}
	client, err := firestore.NewClient(ctx, creds.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Firestore{client: client}, nil
}

func (s *Firestore) UpsertInterview(ctx context.Context, id string, rec InterviewRecord) (string, error) {
	col := s.client.Collection(CollectionInterviews)
	var doc *firestore.DocumentRef
	if id == "" {
		doc = col.NewDoc()
	} else {
		doc = col.Doc(id)
	}

	fields := interviewFields(rec)
	fields["createdAt"] = firestore.ServerTimestamp

	// Merge keeps previously stored fields that this write does not name,
	// which makes repeated writes on the same id safe.
	if _, err := doc.Set(ctx, fields, firestore.MergeAll); err != nil {
		return "", fmt.Errorf("write interview %s: %w", doc.ID, err)
	}
	return doc.ID, nil
}

func (s *Firestore) UpsertAnswer(ctx context.Context, interviewID string, rec AnswerRecord) error {
	if interviewID == "" {
		return fmt.Errorf("interview id is required")
	}
	doc := s.client.
		Collection(CollectionInterviews).
		Doc(interviewID).
		Collection(CollectionAnswers).
		Doc(strconv.Itoa(rec.Sequence))

	fields := answerFields(rec)
	fields["createdAt"] = firestore.ServerTimestamp

	if _, err := doc.Set(ctx, fields); err != nil {
		return fmt.Errorf("write answer %d for interview %s: %w", rec.Sequence, interviewID, err)
	}
	return nil
}

func (s *Firestore) Close() error {
	return s.client.Close()
}

func interviewFields(rec InterviewRecord) map[string]any {
	techstack := rec.TechStack
	if techstack == nil {
		techstack = []string{}
	}
	return map[string]any{
		"role":          rec.Role,
		"level":         rec.Level,
		"type":          rec.Type,
		"techstack":     techstack,
		"questionCount": rec.QuestionCount,
		"userId":        rec.UserID,
		"finalized":     rec.Finalized,
	}
}

func answerFields(rec AnswerRecord) map[string]any {
	return map[string]any{
		"question": rec.Question,
		"answer":   rec.Answer,
		"sequence": rec.Sequence,
	}
}
