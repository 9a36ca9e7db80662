package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/agentportal/internal/failure"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Verify(ctx context.Context, args []string) error
	Dashboard(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the agent CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                      show available commands
//	  - signup                    create an account and verify the emailed code
//	  - verify <email> [purpose]  enter a code received earlier
//	  - login                     authenticate
//	  - exit | quit               leave the program
//
//	Logged in:
//	  - help                      show available commands
//	  - dashboard                 show the signed-in agent
//	  - logout                    log out
//	  - exit | quit               leave the program
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("agent %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: dashboard, logout, exit")
			} else {
				printlnFn("Available commands: signup, verify <email> [purpose], login, exit")
			}

		case "signup", "register":
			cmdErr = a.Signup(ctx)

		case "verify":
			cmdErr = a.Verify(ctx, args)

		case "login":
			cmdErr = a.Login(ctx)

		case "dashboard":
			cmdErr = a.Dashboard(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", errorText(cmdErr))
		}
	}
}

// errorText returns the message to show for err.
func errorText(err error) string {
	return failure.MessageOf(err, err.Error())
}
