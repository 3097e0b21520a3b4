package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/jackzampolin/pagesmith/internal/api"
)

// TestingT is the subset of testing.TB the helpers need.
type TestingT interface {
	Helper()
	Skip(args ...any)
	Fatalf(format string, args ...any)
}

// Logger returns a logger that writes to stderr when -v is set and discards otherwise.
func Logger(t TestingT) *slog.Logger {
	t.Helper()
	var w io.Writer = io.Discard
	if testing.Verbose() {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// RequirePdftoppm skips the test when poppler's pdftoppm is not installed.
func RequirePdftoppm(t TestingT) string {
	t.Helper()
	path, err := exec.LookPath("pdftoppm")
	if err != nil {
		t.Skip("pdftoppm not installed")
	}
	return path
}

// FindFreePort finds an available TCP port and returns it as a string.
func FindFreePort() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer listener.Close()
	return fmt.Sprintf("%d", listener.Addr().(*net.TCPAddr).Port), nil
}

// WaitForServer blocks until the server at url answers /health.
func WaitForServer(ctx context.Context, url string, timeout time.Duration) error {
	return api.NewClient(url).WaitReady(ctx, timeout)
}

// WaitForShutdown waits for a channel to receive a value or timeout.
func WaitForShutdown(done <-chan error, timeout time.Duration) error {
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for shutdown")
	}
}
