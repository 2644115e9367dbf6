package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Whoami(ctx context.Context) error
	Find(ctx context.Context, email string) error
	List(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// The loop ends at end of input or on "exit" / "quit".
//
// Commands
//
//	Not logged in:
//	  help, register, login, exit | quit
//
//	Logged in:
//	  help, register, whoami, find <email>, (l)ist, logout, exit | quit
//
// Errors returned by handlers are printed and the loop goes on. A cancelled
// ctx ends the loop before the next command is read or dispatched.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ud %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		if ctx.Err() != nil {
			return
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: register, whoami, find <email>, (l)ist, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "whoami":
			cmdErr = a.Whoami(ctx)

		case "find":
			if len(args) != 1 {
				printlnFn("Usage: find <email>")
				continue
			}
			cmdErr = a.Find(ctx, args[0])

		case "l", "list":
			cmdErr = a.List(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if ctx.Err() != nil {
			return
		}
		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
