package curl

import (
	"bytes"
	"context"
	"testing"
)

func TestRunner_ForwardsExitCode(t *testing.T) {
	r := NewRunner("sh")
	r.Stdout = &bytes.Buffer{}
	r.Stderr = &bytes.Buffer{}

	res, err := r.Run(context.Background(), []string{"-c", "exit 7"})
	if err == nil {
		t.Fatal("expected error for nonzero exit")
	}
	if res.ExitCode != 7 {
		t.Errorf("expected exit code 7, got %d", res.ExitCode)
	}
}

func TestRunner_Success(t *testing.T) {
	var stdout bytes.Buffer
	r := NewRunner("sh")
	r.Stdout = &stdout
	r.Stderr = &bytes.Buffer{}

	res, err := r.Run(context.Background(), []string{"-c", "echo hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", res.ExitCode)
	}
	if stdout.String() != "hello\n" {
		t.Errorf("child stdout not forwarded, got %q", stdout.String())
	}
}

func TestRunner_MissingBinary(t *testing.T) {
	r := NewRunner("definitely-not-a-real-binary-name")
	r.Stdout = &bytes.Buffer{}
	r.Stderr = &bytes.Buffer{}

	res, err := r.Run(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if res.ExitCode != -1 {
		t.Errorf("expected exit code -1 for start failure, got %d", res.ExitCode)
	}
}

func TestNewRunner_DefaultBinary(t *testing.T) {
	r := NewRunner("")
	if r.Binary != DefaultBinary {
		t.Errorf("expected default binary %q, got %q", DefaultBinary, r.Binary)
	}
}
