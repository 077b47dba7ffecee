package main

import (
	"context"
	"flag"
	"fmt"

	"fintrack/internal/client"
)

func (a *app) goal(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fintrack goal list|add|show|update|delete|fund")
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	svc := client.NewSavingsGoalService(a.session)

	switch args[0] {
	case "list", "ls":
		goals, err := svc.List(ctx)
		if err != nil {
			return err
		}
		return printGoals(a.stdout, goals)

	case "add":
		fs := newFlagSet("goal add", a.stderr)
		in := bindGoal(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		input, err := in.build(fs, true)
		if err != nil {
			return err
		}
		goal, err := svc.Create(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Added savings goal %s.\n", goal.ID)
		return printGoals(a.stdout, []client.SavingsGoal{*goal})

	case "show":
		id, _, err := idArg("goal show", args[1:])
		if err != nil {
			return err
		}
		goal, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		return printGoals(a.stdout, []client.SavingsGoal{*goal})

	case "update":
		id, rest, err := idArg("goal update", args[1:])
		if err != nil {
			return err
		}
		fs := newFlagSet("goal update", a.stderr)
		in := bindGoal(fs)
		current := fs.String("current", "", "Replace the amount saved so far")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		input, err := in.build(fs, false)
		if err != nil {
			return err
		}
		if visited(fs)["current"] {
			if input.CurrentAmount, err = parseAmount(*current); err != nil {
				return err
			}
		}
		goal, err := svc.Patch(ctx, id, input)
		if err != nil {
			return err
		}
		return printGoals(a.stdout, []client.SavingsGoal{*goal})

	case "delete", "rm":
		id, _, err := idArg("goal delete", args[1:])
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted savings goal %s.\n", id)
		return nil

	case "fund", "add-funds":
		id, rest, err := idArg("goal fund", args[1:])
		if err != nil {
			return err
		}
		fs := newFlagSet("goal fund", a.stderr)
		amount := fs.String("amount", "", "Amount to add (required)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *amount == "" {
			return fmt.Errorf("-amount is required")
		}
		d, err := parseAmount(*amount)
		if err != nil {
			return err
		}
		goal, err := svc.AddFunds(ctx, id, *d)
		if err != nil {
			return err
		}
		if goal.IsCompleted {
			fmt.Fprintf(a.stdout, "Goal %q reached!\n", goal.Name)
		}
		return printGoals(a.stdout, []client.SavingsGoal{*goal})
	}
	return fmt.Errorf("unknown goal command %q", args[0])
}

type goalFlags struct {
	name, target, deadline *string
}

func bindGoal(fs *flag.FlagSet) *goalFlags {
	return &goalFlags{
		name:     fs.String("name", "", "Goal name"),
		target:   fs.String("target", "", "Target amount"),
		deadline: fs.String("deadline", "", "Deadline (YYYY-MM-DD)"),
	}
}

func (f *goalFlags) build(fs *flag.FlagSet, create bool) (client.SavingsGoalInput, error) {
	set := visited(fs)
	var in client.SavingsGoalInput
	var err error

	if create && (!set["name"] || !set["target"] || !set["deadline"]) {
		return in, fmt.Errorf("-name, -target and -deadline are required")
	}
	if set["name"] {
		in.Name = f.name
	}
	if set["target"] {
		if in.TargetAmount, err = parseAmount(*f.target); err != nil {
			return in, err
		}
	}
	if set["deadline"] {
		if in.Deadline, err = optionalDate("deadline", *f.deadline); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (a *app) dashboard(ctx context.Context, args []string) error {
	fs := newFlagSet("dashboard", a.stderr)
	recent := fs.Int("recent", 5, "Number of recent entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	ov, err := client.NewDashboardService(a.session).Overview(ctx, *recent)
	if err != nil {
		return err
	}
	return printOverview(a.stdout, ov)
}

func (a *app) activity(ctx context.Context, args []string) error {
	fs := newFlagSet("activity", a.stderr)
	page := fs.Int("page", 1, "Page number")
	size := fs.Int("size", 0, "Entries per page (server default if 0)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	p, err := client.NewDashboardService(a.session).Activity(ctx, *page, *size)
	if err != nil {
		return err
	}
	return printActivity(a.stdout, p)
}
