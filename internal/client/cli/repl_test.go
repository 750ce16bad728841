package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	calls []string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) Status(ctx context.Context) error       { return s.record("status") }
func (s *stubExec) SignIn(ctx context.Context) error       { return s.record("signin") }
func (s *stubExec) Guest(ctx context.Context) error        { return s.record("guest") }
func (s *stubExec) QuickStart(ctx context.Context) error   { return s.record("quickstart") }
func (s *stubExec) Profile(ctx context.Context) error      { return s.record("profile") }
func (s *stubExec) Capabilities(ctx context.Context) error { return s.record("caps") }
func (s *stubExec) Retry(ctx context.Context) error        { return s.record("retry") }
func (s *stubExec) SignOut(ctx context.Context) error      { return s.record("signout") }

func runWithInput(t *testing.T, input string) (*stubExec, []string) {
	t.Helper()
	var printed []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		for _, v := range a {
			if s, ok := v.(string); ok {
				printed = append(printed, s)
			}
		}
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })

	stub := &stubExec{}
	scanner := bufio.NewScanner(strings.NewReader(input))
	runREPL(context.Background(), stub, func() string { return "(test)" }, scanner)
	return stub, printed
}

func TestREPLDispatch(t *testing.T) {
	stub, _ := runWithInput(t, "status\nsignin\nguest\nquickstart\nprofile\ncaps\nretry\nsignout\nexit\n")

	assert.Equal(t, []string{
		"status", "signin", "guest", "quickstart", "profile", "caps", "retry", "signout",
	}, stub.calls)
}

func TestREPLShortStatusAlias(t *testing.T) {
	stub, _ := runWithInput(t, "s\nquit\n")
	assert.Equal(t, []string{"status"}, stub.calls)
}

func TestREPLUnknownCommand(t *testing.T) {
	_, printed := runWithInput(t, "frobnicate\nexit\n")
	assert.Contains(t, printed, "Unknown command:")
}

func TestREPLBlankLinesIgnored(t *testing.T) {
	stub, _ := runWithInput(t, "\n   \nstatus\nexit\n")
	assert.Equal(t, []string{"status"}, stub.calls)
}

func TestREPLExitsOnEOF(t *testing.T) {
	stub, _ := runWithInput(t, "status\n")
	assert.Equal(t, []string{"status"}, stub.calls)
}
