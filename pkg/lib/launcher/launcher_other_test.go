//go:build !windows

package launcher

import (
	"errors"
	"testing"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

func TestLaunchUnsupported(t *testing.T) {
	_, err := LaunchSuspended(&lib.LaunchRequest{Executable: "/bin/true"})
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	_, err = LaunchSuspended(&lib.LaunchRequest{})
	if !errors.Is(err, lib.ErrConfig) {
		t.Fatalf("expected validation to run first, got %v", err)
	}
}

func TestComposeArguments(t *testing.T) {
	if got := ComposeArguments([]string{"/C", "echo", "hi"}); got != "/C echo hi" {
		t.Fatalf("unexpected command line %q", got)
	}
}
