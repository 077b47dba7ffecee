package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"fintrack/internal/client"
)

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register", a.stderr)
	username := fs.String("user", "", "Username (required)")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (prompted if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.Usage()
		return fmt.Errorf("-user is required")
	}

	req := client.RegisterRequest{Username: *username, Email: *email, Password: *password, Password2: *password}
	if req.Password == "" {
		var err error
		if req.Password, err = a.readPassword("Password: "); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		if req.Password2, err = a.readPassword("Confirm password: "); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
	}

	if err := a.session.Register(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Account %s created. Run 'fintrack login -user %s' to sign in.\n", *username, *username)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login", a.stderr)
	username := fs.String("user", "", "Username (required)")
	password := fs.String("password", "", "Password (prompted if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.Usage()
		return fmt.Errorf("-user is required")
	}

	pw := *password
	if pw == "" {
		var err error
		if pw, err = a.readPassword("Password: "); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
	}

	user, err := a.session.Login(ctx, *username, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in as %s.\n", user.Username)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	// A stale session is still cleared locally.
	if _, err := a.session.Restore(ctx); err != nil {
		return err
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Logged out.")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.requireUser(ctx)
	if err != nil {
		return err
	}
	w := newTable(a.stdout)
	fmt.Fprintf(w, "Username:\t%s\n", user.Username)
	fmt.Fprintf(w, "Email:\t%s\n", user.Email)
	fmt.Fprintf(w, "Joined:\t%s\n", user.DateJoined.Format("2 Jan 2006"))
	return w.Flush()
}

// readPassword reads without echo from a terminal and falls back to one
// line of plain input for pipes and tests.
func (a *app) readPassword(prompt string) (string, error) {
	fmt.Fprint(a.stderr, prompt)
	defer fmt.Fprintln(a.stderr)

	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := a.lines().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// lines buffers stdin once so successive prompts read successive lines.
func (a *app) lines() *bufio.Reader {
	if a.in == nil {
		a.in = bufio.NewReader(a.stdin)
	}
	return a.in
}

func newFlagSet(name string, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	return fs
}
