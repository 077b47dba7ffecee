package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"fintrack/internal/client"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func printIncomes(out io.Writer, incomes []client.Income) error {
	if len(incomes) == 0 {
		_, err := fmt.Fprintln(out, "No income entries.")
		return err
	}
	w := newTable(out)
	fmt.Fprintln(w, "ID\tDATE\tSOURCE\tAMOUNT\tNOTES")
	for _, i := range incomes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", i.ID, i.Date, i.Source, money(i.Amount), i.Notes)
	}
	return w.Flush()
}

func printExpenses(out io.Writer, expenses []client.Expense) error {
	if len(expenses) == 0 {
		_, err := fmt.Fprintln(out, "No expenses.")
		return err
	}
	w := newTable(out)
	fmt.Fprintln(w, "ID\tDATE\tTITLE\tCATEGORY\tAMOUNT\tNOTES")
	for _, e := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Title, e.CategoryDisplay, money(e.Amount), e.Notes)
	}
	return w.Flush()
}

func printCategoryTotals(out io.Writer, totals []client.CategoryTotal) error {
	if len(totals) == 0 {
		_, err := fmt.Fprintln(out, "No expenses.")
		return err
	}
	w := newTable(out)
	fmt.Fprintln(w, "CATEGORY\tTOTAL")
	for _, t := range totals {
		fmt.Fprintf(w, "%s\t%s\n", t.Label, money(t.Total))
	}
	return w.Flush()
}

func printGoals(out io.Writer, goals []client.SavingsGoal) error {
	if len(goals) == 0 {
		_, err := fmt.Fprintln(out, "No savings goals.")
		return err
	}
	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tSAVED\tTARGET\tPROGRESS\tDEADLINE\tSTATUS")
	for _, g := range goals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\t%s\t%s\n",
			g.ID, g.Name, money(g.CurrentAmount), money(g.TargetAmount),
			g.ProgressPercentage.StringFixed(1), g.Deadline, goalStatus(g))
	}
	return w.Flush()
}

func goalStatus(g client.SavingsGoal) string {
	switch {
	case g.IsCompleted:
		return "completed"
	case g.DaysRemaining < 0:
		return "overdue"
	case g.IsOnTrack:
		return fmt.Sprintf("on track, %d days left", g.DaysRemaining)
	default:
		return fmt.Sprintf("behind, %d days left", g.DaysRemaining)
	}
}

func printOverview(out io.Writer, ov *client.Overview) error {
	s := ov.Summary
	w := newTable(out)
	fmt.Fprintf(w, "Total income:\t%s\n", money(s.TotalIncome))
	fmt.Fprintf(w, "Total expenses:\t%s\n", money(s.TotalExpenses))
	fmt.Fprintf(w, "Balance:\t%s\n", money(s.Balance))
	fmt.Fprintf(w, "This month:\t+%s / -%s\n", money(s.MonthIncome), money(s.MonthExpenses))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(s.MonthlyData) > 0 {
		fmt.Fprintln(out, "\nLast months:")
		w = newTable(out)
		fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSES")
		for _, m := range s.MonthlyData {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Month, money(m.Income), money(m.Expenses))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(s.ExpensesByCategory) > 0 {
		fmt.Fprintln(out, "\nSpending by category:")
		if err := printCategoryTotals(out, s.ExpensesByCategory); err != nil {
			return err
		}
	}
	if len(s.SavingsGoals) > 0 {
		fmt.Fprintln(out, "\nSavings goals:")
		if err := printGoals(out, s.SavingsGoals); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nRecent income:")
	if err := printIncomes(out, ov.RecentIncome); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nRecent expenses:")
	return printExpenses(out, ov.RecentExpenses)
}

func printActivity(out io.Writer, p *client.ActivityPage) error {
	if len(p.Data) == 0 {
		_, err := fmt.Fprintln(out, "No activity.")
		return err
	}
	w := newTable(out)
	fmt.Fprintln(w, "WHEN\tACTION\tRESOURCE\tID")
	for _, e := range p.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Action, e.ResourceType, e.ResourceID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Page %d of %d (%d entries)\n", p.Page, p.TotalPages, p.TotalItems)
	return err
}
