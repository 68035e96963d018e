package tools

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/prepwise/interview-gateway/pkg/agent"
)

func stringField(input map[string]any, key string, required bool) (string, *agent.Error) {
	raw, ok := input[key]
	if !ok || raw == nil {
		if required {
			return "", agent.Errorf(agent.ErrBadInput, "%s is required", key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", agent.Errorf(agent.ErrBadInput, "%s must be a string", key)
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", agent.Errorf(agent.ErrBadInput, "%s is required", key)
	}
	return s, nil
}

// rawStringField keeps the value verbatim; answer transcripts must not be
// reshaped on the way to storage.
func rawStringField(input map[string]any, key string) (string, *agent.Error) {
	raw, ok := input[key]
	if !ok || raw == nil {
		return "", agent.Errorf(agent.ErrBadInput, "%s is required", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", agent.Errorf(agent.ErrBadInput, "%s must be a string", key)
	}
	return s, nil
}

// intField accepts the integer shapes JSON decoding produces: float64 from
// encoding/json, json.Number, or a native int from in-process callers.
func intField(input map[string]any, key string) (int, *agent.Error) {
	raw, ok := input[key]
	if !ok || raw == nil {
		return 0, agent.Errorf(agent.ErrBadInput, "%s is required", key)
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, agent.Errorf(agent.ErrBadInput, "%s must be an integer", key)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, agent.Errorf(agent.ErrBadInput, "%s must be an integer", key)
		}
		return int(n), nil
	default:
		return 0, agent.Errorf(agent.ErrBadInput, "%s must be an integer", key)
	}
}

func objectSchema(properties map[string]JSONSchema, required ...string) JSONSchema {
	additional := false
	return JSONSchema{
		Type:                 "object",
		Properties:           properties,
		Required:             required,
		AdditionalProperties: &additional,
	}
}
