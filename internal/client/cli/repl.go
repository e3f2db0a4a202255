package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Account(ctx context.Context) error
	Feeders(ctx context.Context) error
	Use(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Feed(ctx context.Context, args []string) error
	Plan(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Save(ctx context.Context) error
	Discard(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: login, help, exit"
	helpSignedIn  = `Available commands:
  account                  show the signed-in account
  feeders                  list feeders
  use <id>                 select a feeder
  status                   check whether the feeder is reachable
  feed [grams]             serve a meal now
  plan [show]              show the feeding plan
  plan add HH:MM grams     schedule a meal (UTC)
  plan now grams           schedule a meal at the current time
  plan remove N...         remove meals
  plan enable|disable N    toggle a meal
  set name <name>          rename the feeder
  set amount <grams>       change the default amount
  save                     send pending changes
  discard                  drop pending changes
  logout                   sign out
  exit                     leave`
)

// runREPL reads commands with readLine until end of input, ctx is done, or
// the user types "exit" / "quit". Handler errors are printed and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, readLine func(ctx context.Context) (string, bool), out io.Writer) {
	for {
		fmt.Fprintf(out, "aln (%s)> ", statusFn())
		line, ok := readLine(ctx)
		if !ok {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpSignedIn)
			} else {
				fmt.Fprintln(out, helpSignedOut)
			}
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		case "login":
			err = a.Login(ctx)
		case "logout", "account", "feeders", "use", "status", "feed", "plan", "set", "save", "discard":
			if !a.isLoggedIn() {
				fmt.Fprintln(out, "Sign in first (type 'login')")
				continue
			}
			err = dispatch(ctx, a, cmd, args)
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
			continue
		}

		if err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "account":
		return a.Account(ctx)
	case "feeders":
		return a.Feeders(ctx)
	case "use":
		return a.Use(ctx, args)
	case "status":
		return a.Status(ctx)
	case "feed":
		return a.Feed(ctx, args)
	case "plan":
		return a.Plan(ctx, args)
	case "set":
		return a.Set(ctx, args)
	case "save":
		return a.Save(ctx)
	case "discard":
		return a.Discard(ctx)
	}
	return nil
}
