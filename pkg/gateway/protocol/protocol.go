// Package protocol defines the WebSocket frames exchanged with the external
// reasoning driver on /v1/session. The first client frame must be hello;
// afterwards the driver issues tool_call frames strictly one at a time and
// the server answers each with a tool_result.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prepwise/interview-gateway/pkg/agent/tools"
)

const ProtocolVersion1 = "1"

type DecodeError struct {
	Code    string
	Message string
	Param   string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Param) == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Param)
}

func badRequest(message, param string) *DecodeError {
	return &DecodeError{Code: "bad_request", Message: message, Param: param}
}

// ClientHello opens the session. MetadataSources carries the raw context
// blobs in authority order: the room blob first, then one per participant.
// Questions optionally seeds the conduct-mode question list; the integrating
// system owns how generated questions reach a conduct session.
type ClientHello struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Room            string   `json:"room,omitempty"`
	MetadataSources []string `json:"metadata_sources"`
	Questions       []string `json:"questions,omitempty"`
}

type ClientToolCall struct {
	Type  string         `json:"type"`
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input,omitempty"`
}

type ClientControl struct {
	Type string `json:"type"`
	Op   string `json:"op"`
}

type ServerHelloAck struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	SessionID       string             `json:"session_id"`
	Mode            string             `json:"mode"`
	InterviewID     string             `json:"interview_id,omitempty"`
	Tools           []tools.Definition `json:"tools"`
}

type ToolError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type ServerToolResult struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Result map[string]any `json:"result,omitempty"`
	Error  *ToolError     `json:"error,omitempty"`
}

// ServerSessionEnd closes the session. Announcement carries the fixed
// closing line spoken to the candidate, when one applies.
type ServerSessionEnd struct {
	Type         string `json:"type"`
	Reason       string `json:"reason"`
	Announcement string `json:"announcement,omitempty"`
}

type ServerError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Close   bool   `json:"close,omitempty"`
}

type ServerWarning struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func DecodeClientMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, badRequest("invalid json frame", "")
	}
	typ := strings.TrimSpace(envelope.Type)
	if typ == "" {
		return nil, badRequest("missing type", "type")
	}

	switch typ {
	case "hello":
		var msg ClientHello
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid hello frame", "")
		}
		if err := ValidateHello(msg); err != nil {
			return nil, err
		}
		return msg, nil
	case "tool_call":
		var msg ClientToolCall
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid tool_call frame", "")
		}
		if strings.TrimSpace(msg.ID) == "" {
			return nil, badRequest("tool_call.id is required", "id")
		}
		if strings.TrimSpace(msg.Name) == "" {
			return nil, badRequest("tool_call.name is required", "name")
		}
		if msg.Input == nil {
			msg.Input = map[string]any{}
		}
		return msg, nil
	case "control":
		var msg ClientControl
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid control frame", "")
		}
		op := strings.TrimSpace(msg.Op)
		if op == "" {
			return nil, badRequest("control.op is required", "op")
		}
		if op != "end_session" {
			return nil, &DecodeError{Code: "unsupported", Message: "unsupported control operation", Param: "op"}
		}
		msg.Op = op
		return msg, nil
	default:
		return nil, badRequest("unsupported message type", "type")
	}
}

func ValidateHello(msg ClientHello) error {
	if strings.TrimSpace(msg.ProtocolVersion) == "" {
		return badRequest("hello.protocol_version is required", "protocol_version")
	}
	if strings.TrimSpace(msg.ProtocolVersion) != ProtocolVersion1 {
		return &DecodeError{Code: "unsupported_version", Message: "unsupported protocol_version", Param: "protocol_version"}
	}
	return nil
}
