package protocol

import (
	"errors"
	"testing"
)

func TestDecodeClientMessage_Hello(t *testing.T) {
	t.Parallel()

	msg, err := DecodeClientMessage([]byte(`{
		"type": "hello",
		"protocol_version": "1",
		"room": "interview-42",
		"metadata_sources": ["{\"userId\":\"u-1\"}"],
		"questions": ["Q1", "Q2"]
	}`))
	if err != nil {
		t.Fatalf("DecodeClientMessage: %v", err)
	}
	hello, ok := msg.(ClientHello)
	if !ok {
		t.Fatalf("got %T, want ClientHello", msg)
	}
	if hello.Room != "interview-42" || len(hello.MetadataSources) != 1 || len(hello.Questions) != 2 {
		t.Fatalf("hello=%+v", hello)
	}
}

func TestDecodeClientMessage_HelloVersionRequired(t *testing.T) {
	t.Parallel()

	_, err := DecodeClientMessage([]byte(`{"type":"hello","metadata_sources":[]}`))
	var de *DecodeError
	if !errors.As(err, &de) || de.Param != "protocol_version" {
		t.Fatalf("got %v, want decode error on protocol_version", err)
	}

	_, err = DecodeClientMessage([]byte(`{"type":"hello","protocol_version":"2","metadata_sources":[]}`))
	if !errors.As(err, &de) || de.Code != "unsupported_version" {
		t.Fatalf("got %v, want unsupported_version", err)
	}
}

func TestDecodeClientMessage_ToolCall(t *testing.T) {
	t.Parallel()

	msg, err := DecodeClientMessage([]byte(`{"type":"tool_call","id":"call-1","name":"save_answer"}`))
	if err != nil {
		t.Fatalf("DecodeClientMessage: %v", err)
	}
	call, ok := msg.(ClientToolCall)
	if !ok {
		t.Fatalf("got %T, want ClientToolCall", msg)
	}
	if call.Input == nil {
		t.Fatal("want Input defaulted to an empty map")
	}

	for _, raw := range []string{
		`{"type":"tool_call","name":"save_answer"}`,
		`{"type":"tool_call","id":"call-1"}`,
		`{"type":"tool_call","id":" ","name":"save_answer"}`,
	} {
		if _, err := DecodeClientMessage([]byte(raw)); err == nil {
			t.Fatalf("decode %s: want error", raw)
		}
	}
}

func TestDecodeClientMessage_Control(t *testing.T) {
	t.Parallel()

	msg, err := DecodeClientMessage([]byte(`{"type":"control","op":" end_session "}`))
	if err != nil {
		t.Fatalf("DecodeClientMessage: %v", err)
	}
	ctl, ok := msg.(ClientControl)
	if !ok || ctl.Op != "end_session" {
		t.Fatalf("got %T %+v, want end_session control", msg, msg)
	}

	_, err = DecodeClientMessage([]byte(`{"type":"control","op":"pause"}`))
	var de *DecodeError
	if !errors.As(err, &de) || de.Code != "unsupported" {
		t.Fatalf("got %v, want unsupported op", err)
	}
}

func TestDecodeClientMessage_BadEnvelopes(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`not json`,
		`{}`,
		`{"type":"  "}`,
		`{"type":"telemetry"}`,
	} {
		if _, err := DecodeClientMessage([]byte(raw)); err == nil {
			t.Fatalf("decode %s: want error", raw)
		}
	}
}

func TestDecodeError_Error(t *testing.T) {
	t.Parallel()

	if got := (&DecodeError{Message: "bad"}).Error(); got != "bad" {
		t.Fatalf("got %q", got)
	}
	if got := (&DecodeError{Message: "bad", Param: "id"}).Error(); got != "bad (id)" {
		t.Fatalf("got %q", got)
	}
}
