package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Status(ctx context.Context) error
	SignIn(ctx context.Context) error
	Guest(ctx context.Context) error
	QuickStart(ctx context.Context) error
	Profile(ctx context.Context) error
	Capabilities(ctx context.Context) error
	Retry(ctx context.Context) error
	SignOut(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Sidereal debug shell.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print their
// own messages. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sid %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn("Available commands: status, signin, guest, quickstart, profile, caps, retry, signout, exit")

		case "s", "status":
			_ = a.Status(ctx)

		case "signin":
			_ = a.SignIn(ctx)

		case "guest":
			_ = a.Guest(ctx)

		case "quickstart":
			_ = a.QuickStart(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "caps":
			_ = a.Capabilities(ctx)

		case "retry":
			_ = a.Retry(ctx)

		case "signout":
			_ = a.SignOut(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
