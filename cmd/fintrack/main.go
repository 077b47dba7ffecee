// Command fintrack is a terminal client for the fintrack API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"fintrack/internal/client"
	"fintrack/internal/logger"
)

const usage = `Usage: fintrack [flags] <command> [args]

Commands:
  register   -user <name> [-email <email>] [-password <pw>]
  login      -user <name> [-password <pw>]
  logout
  whoami
  income     list|add|show|update|delete|total
  expense    list|add|show|update|delete|total|categories
  goal       list|add|show|update|delete|fund
  dashboard  [-recent N]
  activity   [-page N] [-size N]

Flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every command needs.
type app struct {
	session *client.Session
	stdin   io.Reader
	in      *bufio.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fintrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	apiURL := fs.String("api", envOr("FINTRACK_API_URL", "http://localhost:8080/api"), "API base URL")
	sessionPath := fs.String("session", os.Getenv("FINTRACK_SESSION_DB"), "Session database (default ~/.fintrack/session.db)")
	timeout := fs.Duration("timeout", envDuration("FINTRACK_TIMEOUT", client.DefaultTimeout), "Request timeout")
	verbose := fs.Bool("v", false, "Log requests to stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}
	logger.InitCLI(*verbose)
	defer logger.Sync()

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	if *sessionPath == "" {
		path, err := client.DefaultSessionPath()
		if err != nil {
			return err
		}
		*sessionPath = path
	}
	store, err := client.OpenSQLiteStore(*sessionPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	session := client.NewSession(store, *apiURL, client.WithTimeout(*timeout))
	session.OnTerminated(func() {
		fmt.Fprintln(stderr, "Your session has expired. Please log in again.")
	})

	a := &app{session: session, stdin: stdin, stdout: stdout, stderr: stderr}
	ctx := context.Background()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "income":
		return a.income(ctx, rest)
	case "expense", "expenses":
		return a.expense(ctx, rest)
	case "goal", "goals":
		return a.goal(ctx, rest)
	case "dashboard":
		return a.dashboard(ctx, rest)
	case "activity":
		return a.activity(ctx, rest)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// requireUser restores the stored session or fails with a hint to log in.
func (a *app) requireUser(ctx context.Context) (*client.User, error) {
	user, err := a.session.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: run 'fintrack login'", client.ErrNotLoggedIn)
	}
	return user, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
