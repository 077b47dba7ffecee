package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/client"
	"fintrack/internal/models"
)

func (a *app) income(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fintrack income list|add|show|update|delete|total")
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	svc := client.NewIncomeService(a.session)

	switch args[0] {
	case "list", "ls":
		fs := newFlagSet("income list", a.stderr)
		filter := bindFilter(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		f, err := filter.build()
		if err != nil {
			return err
		}
		incomes, err := svc.List(ctx, f)
		if err != nil {
			return err
		}
		return printIncomes(a.stdout, incomes)

	case "add":
		fs := newFlagSet("income add", a.stderr)
		in := bindIncome(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		input, err := in.build(fs, true)
		if err != nil {
			return err
		}
		income, err := svc.Create(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Added income %s.\n", income.ID)
		return printIncomes(a.stdout, []client.Income{*income})

	case "show":
		id, _, err := idArg("income show", args[1:])
		if err != nil {
			return err
		}
		income, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		return printIncomes(a.stdout, []client.Income{*income})

	case "update":
		id, rest, err := idArg("income update", args[1:])
		if err != nil {
			return err
		}
		fs := newFlagSet("income update", a.stderr)
		in := bindIncome(fs)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		input, err := in.build(fs, false)
		if err != nil {
			return err
		}
		income, err := svc.Patch(ctx, id, input)
		if err != nil {
			return err
		}
		return printIncomes(a.stdout, []client.Income{*income})

	case "delete", "rm":
		id, _, err := idArg("income delete", args[1:])
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted income %s.\n", id)
		return nil

	case "total":
		total, err := svc.MonthlyTotal(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Income for %s: %s\n", total.Month, money(total.Total))
		return nil
	}
	return fmt.Errorf("unknown income command %q", args[0])
}

func (a *app) expense(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fintrack expense list|add|show|update|delete|total|categories")
	}
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	svc := client.NewExpenseService(a.session)

	switch args[0] {
	case "list", "ls":
		fs := newFlagSet("expense list", a.stderr)
		filter := bindFilter(fs)
		category := fs.String("category", "", "Only this category")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		f, err := filter.build()
		if err != nil {
			return err
		}
		f.Category = models.ExpenseCategory(*category)
		expenses, err := svc.List(ctx, f)
		if err != nil {
			return err
		}
		return printExpenses(a.stdout, expenses)

	case "add":
		fs := newFlagSet("expense add", a.stderr)
		in := bindExpense(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		input, err := in.build(fs, true)
		if err != nil {
			return err
		}
		expense, err := svc.Create(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Added expense %s.\n", expense.ID)
		return printExpenses(a.stdout, []client.Expense{*expense})

	case "show":
		id, _, err := idArg("expense show", args[1:])
		if err != nil {
			return err
		}
		expense, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		return printExpenses(a.stdout, []client.Expense{*expense})

	case "update":
		id, rest, err := idArg("expense update", args[1:])
		if err != nil {
			return err
		}
		fs := newFlagSet("expense update", a.stderr)
		in := bindExpense(fs)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		input, err := in.build(fs, false)
		if err != nil {
			return err
		}
		expense, err := svc.Patch(ctx, id, input)
		if err != nil {
			return err
		}
		return printExpenses(a.stdout, []client.Expense{*expense})

	case "delete", "rm":
		id, _, err := idArg("expense delete", args[1:])
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Deleted expense %s.\n", id)
		return nil

	case "total":
		total, err := svc.MonthlyTotal(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Expenses for %s: %s\n", total.Month, money(total.Total))
		return nil

	case "categories", "by-category":
		totals, err := svc.ByCategory(ctx)
		if err != nil {
			return err
		}
		return printCategoryTotals(a.stdout, totals)
	}
	return fmt.Errorf("unknown expense command %q", args[0])
}

type filterFlags struct {
	search, from, to, order *string
	year, month, limit      *int
}

func bindFilter(fs *flag.FlagSet) *filterFlags {
	return &filterFlags{
		search: fs.String("search", "", "Case-insensitive text match"),
		from:   fs.String("from", "", "Earliest date (YYYY-MM-DD)"),
		to:     fs.String("to", "", "Latest date (YYYY-MM-DD)"),
		order:  fs.String("order", "", "Sort fields, e.g. -amount or date,amount (default newest first)"),
		year:   fs.Int("year", 0, "Only this year"),
		month:  fs.Int("month", 0, "Only this month (1-12)"),
		limit:  fs.Int("limit", 0, "Show at most N entries"),
	}
}

func (f *filterFlags) build() (client.EntryFilter, error) {
	out := client.EntryFilter{Search: *f.search, Year: *f.year, Month: *f.month, Limit: *f.limit, Ordering: *f.order}
	var err error
	if out.DateFrom, err = optionalDate("from", *f.from); err != nil {
		return out, err
	}
	if out.DateTo, err = optionalDate("to", *f.to); err != nil {
		return out, err
	}
	return out, nil
}

type incomeFlags struct {
	source, amount, date, notes *string
}

func bindIncome(fs *flag.FlagSet) *incomeFlags {
	return &incomeFlags{
		source: fs.String("source", "", "Where the money came from"),
		amount: fs.String("amount", "", "Amount, e.g. 1250.00"),
		date:   fs.String("date", "", "Date received (YYYY-MM-DD, default today)"),
		notes:  fs.String("notes", "", "Free-form notes"),
	}
}

// build converts the flags that were set. On create, source and amount are
// required and the date defaults to today.
func (f *incomeFlags) build(fs *flag.FlagSet, create bool) (client.IncomeInput, error) {
	set := visited(fs)
	var in client.IncomeInput
	var err error

	if create && (!set["source"] || !set["amount"]) {
		return in, fmt.Errorf("-source and -amount are required")
	}
	if set["source"] {
		in.Source = f.source
	}
	if set["amount"] {
		if in.Amount, err = parseAmount(*f.amount); err != nil {
			return in, err
		}
	}
	if in.Date, err = dateFlag(set["date"], *f.date, create); err != nil {
		return in, err
	}
	if set["notes"] {
		in.Notes = f.notes
	}
	return in, nil
}

type expenseFlags struct {
	title, category, amount, date, notes *string
}

func bindExpense(fs *flag.FlagSet) *expenseFlags {
	return &expenseFlags{
		title:    fs.String("title", "", "What the money was spent on"),
		category: fs.String("category", "", "Category (default other)"),
		amount:   fs.String("amount", "", "Amount, e.g. 54.30"),
		date:     fs.String("date", "", "Date spent (YYYY-MM-DD, default today)"),
		notes:    fs.String("notes", "", "Free-form notes"),
	}
}

func (f *expenseFlags) build(fs *flag.FlagSet, create bool) (client.ExpenseInput, error) {
	set := visited(fs)
	var in client.ExpenseInput
	var err error

	if create && (!set["title"] || !set["amount"]) {
		return in, fmt.Errorf("-title and -amount are required")
	}
	if set["title"] {
		in.Title = f.title
	}
	if set["category"] {
		c := models.ExpenseCategory(*f.category)
		in.Category = &c
	}
	if set["amount"] {
		if in.Amount, err = parseAmount(*f.amount); err != nil {
			return in, err
		}
	}
	if in.Date, err = dateFlag(set["date"], *f.date, create); err != nil {
		return in, err
	}
	if set["notes"] {
		in.Notes = f.notes
	}
	return in, nil
}

// idArg splits the leading entry id from the remaining flags.
func idArg(cmd string, args []string) (string, []string, error) {
	if len(args) == 0 || args[0] == "" || args[0][0] == '-' {
		return "", nil, fmt.Errorf("usage: fintrack %s <id>", cmd)
	}
	return args[0], args[1:], nil
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// Amount checks are left to the server so the CLI reports the same field
// messages as every other client.
func parseAmount(s string) (*decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return &d, nil
}

func optionalDate(name, s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s date %q, expected YYYY-MM-DD", name, s)
	}
	return &d, nil
}

func dateFlag(set bool, s string, defaultToday bool) (*models.Date, error) {
	if set {
		return optionalDate("date", s)
	}
	if defaultToday {
		today := models.Today()
		return &today, nil
	}
	return nil, nil
}
