package agent

import (
	"encoding/json"
	"strings"
)

// Metadata is the trusted session configuration distilled from raw room and
// participant context blobs.
type Metadata struct {
	UserID      string
	InterviewID string
	Mode        string
}

// ResolveMetadata scans candidate sources in order and returns the first one
// that decodes to a non-empty JSON object. Room-level context is expected
// first; it represents the authoritative session intent, so earlier sources
// win ties. Sources that fail to decode are skipped. When nothing decodes,
// the zero Metadata is returned.
func ResolveMetadata(sources []string) Metadata {
	for _, raw := range sources {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			continue
		}
		if len(obj) == 0 {
			continue
		}
		return Metadata{
			UserID:      stringField(obj, "userId"),
			InterviewID: stringField(obj, "interviewId"),
			Mode:        stringField(obj, "mode"),
		}
	}
	return Metadata{}
}

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
