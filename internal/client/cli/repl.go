package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn and printfFn are test seams for user-facing output. In tests,
// replace them with stubs. The prompt goes through printfFn so the cursor
// stays on the prompt line.
var (
	printlnFn = fmt.Println
	printfFn  = fmt.Printf
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Vehicles(ctx context.Context) error
	Personnel(ctx context.Context) error
	Transactions(ctx context.Context) error
	Categories(ctx context.Context) error
	Activities(ctx context.Context) error
	Health(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the fleet client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own diagnostics. This keeps the REPL loop resilient and focused on
// I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printfFn("fleet> %s > ", statusFn())
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
			if a.isLoggedIn() {
				printlnFn("Available commands: profile, (v)ehicles, personnel, transactions, categories, activities, health, passwd, logout, exit")
			} else {
				printlnFn("Available commands: login, health, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "v", "vehicles":
			_ = a.Vehicles(ctx)

		case "personnel":
			_ = a.Personnel(ctx)

		case "transactions":
			_ = a.Transactions(ctx)

		case "categories":
			_ = a.Categories(ctx)

		case "activities":
			_ = a.Activities(ctx)

		case "health":
			_ = a.Health(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
