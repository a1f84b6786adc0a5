package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/vvka-141/transient/pkg/transient"
)

func TestRequireDSN(t *testing.T) {
	cmd := &cobra.Command{
		Use: "postgres <dsn>",
	}

	t.Run("returns error when no args", func(t *testing.T) {
		err := RequireDSN(cmd, []string{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "missing required argument: <dsn>") {
			t.Errorf("expected error to contain 'missing required argument: <dsn>', got: %s", err.Error())
		}
		if !strings.Contains(err.Error(), "Example:") {
			t.Errorf("expected error to contain 'Example:', got: %s", err.Error())
		}
		if code := transient.ExitCodeForError(err); code != transient.ExitUsageError {
			t.Errorf("expected usage exit code, got %d", code)
		}
	})

	t.Run("returns nil when arg provided", func(t *testing.T) {
		if err := RequireDSN(cmd, []string{"postgres://localhost/db"}); err != nil {
			t.Errorf("expected nil, got: %v", err)
		}
	})

	t.Run("returns error when too many args", func(t *testing.T) {
		err := RequireDSN(cmd, []string{"a", "b"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "accepts 1 arg") {
			t.Errorf("expected error to contain 'accepts 1 arg', got: %s", err.Error())
		}
	})
}

func TestRequireURLAndSubject(t *testing.T) {
	cmd := &cobra.Command{
		Use: "nats <url> <subject>",
	}

	t.Run("names only the missing subject", func(t *testing.T) {
		err := RequireURLAndSubject(cmd, []string{"nats://localhost:4222"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "missing required argument: <subject>") {
			t.Errorf("expected missing <subject>, got: %s", err.Error())
		}
		if strings.Contains(err.Error(), "argument: <url>") {
			t.Errorf("url was provided and should not be reported, got: %s", err.Error())
		}
	})

	t.Run("names both when empty", func(t *testing.T) {
		err := RequireURLAndSubject(cmd, nil)
		if err == nil || !strings.Contains(err.Error(), "<url> <subject>") {
			t.Errorf("expected both arguments reported, got: %v", err)
		}
	})

	t.Run("returns nil when both provided", func(t *testing.T) {
		if err := RequireURLAndSubject(cmd, []string{"nats://localhost:4222", "svc.health"}); err != nil {
			t.Errorf("expected nil, got: %v", err)
		}
	})
}
