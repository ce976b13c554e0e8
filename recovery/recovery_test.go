package recovery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wudi/ocrkit/recovery"
)

func TestStrictStrategyAlwaysFails(t *testing.T) {
	s := recovery.NewStrictStrategy()
	err := errors.New("boom")
	loc := recovery.Location{Component: "ocrad", ObjectNum: 1}
	if got := s.OnError(context.Background(), err, loc); got != recovery.ActionFail {
		t.Errorf("OnError() = %v, want ActionFail", got)
	}
}

func TestLenientStrategyWarnsAndAccumulates(t *testing.T) {
	s := recovery.NewLenientStrategy()
	err1 := errors.New("blob scan out of memory")
	err2 := errors.New("unexpected profile shape")

	if got := s.OnError(context.Background(), err1, recovery.Location{Component: "classify", ByteOffset: 42}); got != recovery.ActionWarn {
		t.Errorf("OnError() = %v, want ActionWarn", got)
	}
	if got := s.OnError(context.Background(), err2, recovery.Location{Component: "textline"}); got != recovery.ActionWarn {
		t.Errorf("OnError() = %v, want ActionWarn", got)
	}

	if len(s.Errors) != 2 {
		t.Fatalf("len(Errors) = %d, want 2", len(s.Errors))
	}
	if !errors.Is(s.Errors[0], err1) {
		t.Errorf("Errors[0] does not wrap %v", err1)
	}
	if !errors.Is(s.Errors[1], err2) {
		t.Errorf("Errors[1] does not wrap %v", err2)
	}
}
