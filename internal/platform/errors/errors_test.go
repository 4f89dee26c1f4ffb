package errors

import (
	stderrs "errors"
	"fmt"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidArgument, ExitUsage},
		{CodeValidation, ExitUsage},
		{CodeInvalidInput, ExitData},
		{CodeMalformedRow, ExitData},
		{CodeJSON, ExitData},
		{CodeRules, ExitData},
		{CodeNotFound, ExitNoInput},
		{CodeSnapshot, ExitIO},
		{CodeUnknown, ExitError},
		{CodePanic, ExitError},
		{9999, ExitError}, // default branch
	}
	for _, c := range cases {
		if got := ExitCodeFor(c.code); got != c.want {
			t.Fatalf("ExitCodeFor(%v) = %d, want %d", c.code, got, c.want)
		}
	}

	if got := ExitCode(nil); got != ExitOK {
		t.Fatalf("ExitCode(nil) = %d, want %d", got, ExitOK)
	}
	if got := ExitCode(stderrs.New("boom")); got != ExitError {
		t.Fatalf("ExitCode(foreign) = %d, want %d", got, ExitError)
	}
	if got := ExitCode(Snapshotf("disk")); got != ExitIO {
		t.Fatalf("ExitCode(snapshot) = %d, want %d", got, ExitIO)
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	// nil *Error should render "<nil>"
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	// New / Newf
	e1 := New(CodeValidation, "bad stuff")
	if CodeOf(e1) != CodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(CodeJSON, "bad json %d", 12)
	if got := e2.Error(); got != "bad json 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	// Wrap / Wrapf / Unwrap
	src := stderrs.New("root")
	e3 := Wrap(src, CodeSnapshot, "read failed")
	if unwrap := stderrs.Unwrap(e3); unwrap == nil || unwrap.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	if CodeOf(e3) != CodeSnapshot {
		t.Fatalf("CodeOf(Wrap) = %v", CodeOf(e3))
	}
	e4 := Wrapf(src, CodeInvalidInput, "nope %s", "here")
	// Error() includes message + ": " + orig
	if want := "nope here: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}

	// As
	if got, ok := As(e4); !ok || got.Code() != CodeInvalidInput {
		t.Fatalf("As() failed for our error")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	// WithField (copy-on-write), WithOp, WithCode
	e5 := Wrap(src, CodeInvalidArgument, "oops")
	e6 := WithField(e5, "session_gap")
	e7 := WithOp(e6, "validate")
	if fe, ok := As(e6); !ok || fe.Field() != "session_gap" {
		t.Fatalf("WithField failed")
	}
	if oe, ok := As(e7); !ok || oe.Op() != "validate" {
		t.Fatalf("WithOp failed")
	}
	// original unchanged
	if fe0, _ := As(e5); fe0.Field() != "" || fe0.Op() != "" {
		t.Fatalf("copy-on-write mutated original")
	}
	e8 := WithCode(e5, CodeRules)
	if CodeOf(e8) != CodeRules || CodeOf(e5) != CodeInvalidArgument {
		t.Fatalf("WithCode failed or mutated original")
	}
	if CodeOf(WithCode(src, CodeJSON)) != CodeJSON {
		t.Fatalf("WithCode must wrap foreign errors")
	}

	// WithFieldChain wraps foreign error
	wrapped := WithFieldChain(src, "name")
	we, ok := As(wrapped)
	if !ok || we.Field() != "name" || we.Code() != CodeUnknown {
		t.Fatalf("WithFieldChain failed: %+v", we)
	}

	// Wire / WireFrom
	w := (&Error{code: CodeValidation, msg: "nope", field: "depth"}).ToWire()
	if w.Code != CodeValidation || w.Message != "nope" || w.Field != "depth" {
		t.Fatalf("ToWire mismatch: %+v", w)
	}
	if wf := WireFrom(nil); wf != (Wire{}) {
		t.Fatalf("WireFrom(nil) expected zero, got %+v", wf)
	}
	// WireFrom for foreign error -> Unknown with original message
	if wf := WireFrom(src); wf.Code != CodeUnknown || wf.Message != "root" {
		t.Fatalf("WireFrom(foreign) mismatch: %+v", wf)
	}
	// WireFrom for our error uses only e.msg (not "msg: orig")
	if wf := WireFrom(e4); wf.Code != CodeInvalidInput || wf.Message != "nope here" {
		t.Fatalf("WireFrom(ours) mismatch: %+v", wf)
	}

	// Helpers (sugar) and IsCode
	if !IsCode(NotFoundf("x"), CodeNotFound) ||
		!IsCode(InvalidArgf("x"), CodeInvalidArgument) ||
		!IsCode(Validationf("x"), CodeValidation) ||
		!IsCode(InvalidInputf("x"), CodeInvalidInput) ||
		!IsCode(MalformedRowf("x"), CodeMalformedRow) ||
		!IsCode(JSONErrf("x"), CodeJSON) ||
		!IsCode(PanicErrf("x"), CodePanic) ||
		!IsCode(Snapshotf("x"), CodeSnapshot) ||
		!IsCode(Rulesf("x"), CodeRules) ||
		!IsCode(Internalf("x"), CodeUnknown) {
		t.Fatalf("sugar helpers code mismatch")
	}

	// WrapIf
	if WrapIf(nil, CodeJSON, "ignored") != nil {
		t.Fatalf("WrapIf(nil) should return nil")
	}
	if WrapIf(src, CodeJSON, "json") == nil {
		t.Fatalf("WrapIf(non-nil) should wrap")
	}

	// Root traversal
	deep := fmt.Errorf("level2: %w", fmt.Errorf("level1: %w", src))
	if got := Root(deep); got == nil || got.Error() != "root" {
		t.Fatalf("Root() failed, got %v", got)
	}

	// ErrNotFound sentinel behavior
	if !IsCode(ErrNotFound, CodeNotFound) {
		t.Fatalf("ErrNotFound code mismatch")
	}
}
