package ports

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClientErrorMatchesKind(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("station 114: %w", &ClientError{Kind: FailureConnectivity, Op: "findAll", Err: cause})

	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected ErrConnectivity match")
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("connectivity failure must not match ErrTimeout")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to stay reachable")
	}
	if !IsTransient(err) {
		t.Fatalf("expected transient")
	}
}

func TestClientErrorTimeout(t *testing.T) {
	err := &ClientError{Kind: FailureTimeout, Op: "getData", Err: context.DeadlineExceeded}
	if !errors.Is(err, ErrTimeout) || !IsTransient(err) {
		t.Fatalf("expected timeout to be transient")
	}
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Kind != FailureTimeout {
		t.Fatalf("expected errors.As to find the ClientError")
	}
}

func TestIsTransientPlainError(t *testing.T) {
	if IsTransient(errors.New("invalid character '<'")) {
		t.Fatalf("decode failures are not transient")
	}
	if IsTransient(nil) {
		t.Fatalf("nil is not transient")
	}
}
