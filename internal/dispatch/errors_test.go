package dispatch

import (
	"errors"
	"fmt"
	"testing"
)

func TestQueueFullError_ErrorAndIs(t *testing.T) {
	e := &QueueFullError{Shard: 3, Length: 10, Capacity: 16}
	if e.Error() == "" {
		t.Fatal("empty error string")
	}
	if !errors.Is(e, ErrQueueFull) {
		t.Fatal("expected errors.Is(e, ErrQueueFull) to be true")
	}
	if errors.Is(e, ErrExecutorClosed) {
		t.Fatal("unexpected match with ErrExecutorClosed")
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCategory
	}{
		{400, Irrecoverable},
		{401, Irrecoverable},
		{403, Irrecoverable},
		{404, Irrecoverable},
		{408, Recoverable},
		{429, Recoverable},
		{500, Recoverable},
		{502, Recoverable},
		{302, Recoverable},
	}
	for _, tc := range cases {
		ce := ClassifyStatus(tc.status, "", errors.New("call failed"))
		if ce.Category != tc.want {
			t.Fatalf("status %d classified as %s, want %s", tc.status, ce.Category, tc.want)
		}
	}
}

func TestIsIrrecoverable_SeesThroughWrapping(t *testing.T) {
	base := ClassifyStatus(403, "forbidden", errors.New("send failed"))
	wrapped := fmt.Errorf("deliver reply: %w", base)

	if !IsIrrecoverable(wrapped) {
		t.Fatal("wrapped irrecoverable error not detected")
	}
	if IsIrrecoverable(errors.New("plain")) {
		t.Fatal("plain error must default to recoverable")
	}
}
